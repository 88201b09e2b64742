package repo

import (
	"context"
	"database/sql"
	"fmt"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/models"

	"github.com/Masterminds/squirrel"
)

// NotificationStore holds a pointer to the sql.DB.
type NotificationStore struct {
	DB *sql.DB
}

// GetNotificationStore returns a notification store instance with injected database.
func GetNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{
		DB: db,
	}
}

// AddNotification persists a notification. An existing id is overwritten.
func (ns *NotificationStore) AddNotification(ctx context.Context, n models.Notification) error {
	query := squirrel.
		Insert(consts.DBNotifications).
		Columns(consts.QNotifyID, consts.QNotifyTitle, consts.QNotifyMessage, consts.QNotifyCreatedAt).
		Values(n.ID, n.Title, n.Message, n.CreatedAt).
		Options("OR REPLACE").
		RunWith(ns.DB)

	if _, err := query.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to store notification %q: %w", n.ID, err)
	}
	return nil
}

// ListNotifications returns the latest 'limit' notifications, newest first.
func (ns *NotificationStore) ListNotifications(ctx context.Context, limit uint64) (notes []models.Notification, err error) {
	query := squirrel.
		Select(consts.QNotifyID, consts.QNotifyTitle, consts.QNotifyMessage, consts.QNotifyCreatedAt).
		From(consts.DBNotifications).
		OrderBy(fmt.Sprintf("%s DESC", consts.QNotifyCreatedAt)).
		Limit(limit).
		RunWith(ns.DB)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logger.Pl.E("Could not close rows for notifications: %v", closeErr)
		}
	}()

	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return notes, nil
}
