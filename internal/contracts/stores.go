// Package contracts defines interfaces that decouple the application layer from storage implementations.
package contracts

import (
	"context"
	"database/sql"
	"variaredirect/internal/models"
)

// Store allows access to the main store repo methods.
type Store interface {
	SettingsStore() SettingsStore
	DownloadStore() DownloadStore
	NotificationStore() NotificationStore
}

// SettingsStore allows access to the settings document.
type SettingsStore interface {
	GetDB() *sql.DB

	// Whole-document operations.
	GetSettings(ctx context.Context) (models.Settings, error)
	GetDocument(ctx context.Context, keys ...string) (map[string]any, error)
	SetSettings(ctx context.Context, s models.Settings) error

	// Serialized read-then-write.
	UpdateSettings(ctx context.Context, updateFn func(*models.Settings) error) (before, after models.Settings, err error)

	// SeedDefaults writes the defaults when no document exists yet.
	SeedDefaults(ctx context.Context) (seeded bool, err error)
}

// DownloadStore allows access to the download history.
type DownloadStore interface {
	GetDB() *sql.DB

	AddRecord(ctx context.Context, ev models.DownloadEvent) error
	GetRecord(ctx context.Context, id string) (rec *models.DownloadRecord, found bool, err error)
	Cancel(ctx context.Context, id string) error
	Erase(ctx context.Context, id string) error
}

// NotificationStore allows access to the notification feed.
type NotificationStore interface {
	AddNotification(ctx context.Context, n models.Notification) error
	ListNotifications(ctx context.Context, limit uint64) ([]models.Notification, error)
}
