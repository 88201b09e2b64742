// Package session holds the short-lived values shared between the settings UI and the dispatcher.
package session

import (
	"sync"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/models"
)

// Store is the single shared session cell. Writes are last-writer-wins.
type Store struct {
	mu   sync.RWMutex
	data models.SessionData
}

// NewStore returns an empty session.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of the current session values.
func (s *Store) Snapshot() models.SessionData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// TempCookie returns the temporary cookie, or "" when none is set.
func (s *Store) TempCookie() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.TempCookie
}

// SetTempCookie stores a cookie header value for the next dispatch.
func (s *Store) SetTempCookie(cookie string) {
	s.mu.Lock()
	s.data.TempCookie = cookie
	s.mu.Unlock()
	logger.Pl.D(2, "Session cookie set (%d bytes)", len(cookie))
}

// ClearTempCookie resets the temporary cookie to empty.
func (s *Store) ClearTempCookie() {
	s.mu.Lock()
	had := s.data.TempCookie != ""
	s.data.TempCookie = ""
	s.mu.Unlock()
	if had {
		logger.Pl.D(2, "Session cookie cleared")
	}
}

// SetCurrentTabDomain records the domain of the page the UI was opened on.
func (s *Store) SetCurrentTabDomain(domain string) {
	s.mu.Lock()
	s.data.CurrentTabDomain = domain
	s.mu.Unlock()
}

// SetConnected updates the connectivity indicator. Returns true if the value changed.
func (s *Store) SetConnected(connected bool) (changed bool) {
	s.mu.Lock()
	changed = s.data.IsConnected != connected
	s.data.IsConnected = connected
	s.mu.Unlock()
	return changed
}

// IsConnected reports the connectivity indicator.
func (s *Store) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.IsConnected
}

// Disconnect handles the UI going away: the temporary cookie and tab domain are dropped.
func (s *Store) Disconnect() {
	s.mu.Lock()
	s.data.TempCookie = ""
	s.data.CurrentTabDomain = ""
	s.mu.Unlock()
	logger.Pl.D(1, "Settings UI disconnected, session cleared")
}
