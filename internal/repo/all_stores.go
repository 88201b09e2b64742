// Package repo holds the database-backed stores.
package repo

import (
	"database/sql"
	"variaredirect/internal/contracts"
)

// Store holds the database and its stores.
type Store struct {
	db                *sql.DB
	settingsStore     *SettingsStore
	downloadStore     *DownloadStore
	notificationStore *NotificationStore
}

// InitStores returns the store aggregate for db.
func InitStores(db *sql.DB) *Store {
	return &Store{
		db:                db,
		settingsStore:     GetSettingsStore(db),
		downloadStore:     GetDownloadStore(db),
		notificationStore: GetNotificationStore(db),
	}
}

// SettingsStore returns the settings store.
func (s *Store) SettingsStore() contracts.SettingsStore {
	return s.settingsStore
}

// DownloadStore returns the download history store.
func (s *Store) DownloadStore() contracts.DownloadStore {
	return s.downloadStore
}

// NotificationStore returns the notification store.
func (s *Store) NotificationStore() contracts.NotificationStore {
	return s.notificationStore
}
