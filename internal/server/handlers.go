package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const defaultNotificationLimit = 50

// handleDownloadCreated runs the redirect pipeline for a newly created download.
func (s *Server) handleDownloadCreated(w http.ResponseWriter, r *http.Request) {
	var ev models.DownloadEvent
	if !decodeBody(w, r, &ev) {
		return
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	out := s.Pipeline.HandleDownload(r.Context(), ev)
	writeJSON(w, http.StatusOK, out)
}

// handleGetDownload returns the history record for a download.
func (s *Server) handleGetDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, found, err := s.Store.DownloadStore().GetRecord(r.Context(), id)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "download not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleGetSettings returns the settings document, optionally restricted with ?keys=a,b.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	var keys []string
	if q := r.URL.Query().Get("keys"); q != "" {
		keys = splitKeys(q)
	}

	doc, err := s.Store.SettingsStore().GetDocument(r.Context(), keys...)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleReplaceSettings replaces the settings document.
func (s *Server) handleReplaceSettings(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if !decodeBody(w, r, &doc) {
		return
	}

	after, err := s.Pipeline.ReplaceSettings(r.Context(), doc)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to save settings: %v", err), http.StatusInternalServerError)
		return
	}
	writeSettings(w, after)
}

// listItemRequest carries a list entry, or a header for persistentHeaders.
type listItemRequest struct {
	Item  string `json:"item"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// handleAddListItem adds an entry to one of the settings lists.
func (s *Server) handleAddListItem(w http.ResponseWriter, r *http.Request) {
	list := chi.URLParam(r, "list")

	var req listItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var (
		after models.Settings
		err   error
	)
	if list == models.SetPersistentHeaders {
		after, err = s.Pipeline.AddHeader(r.Context(), models.HeaderItem{Key: req.Key, Value: req.Value})
	} else {
		after, err = s.Pipeline.AddListItem(r.Context(), list, req.Item)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeSettings(w, after)
}

// handleRemoveListItem removes an entry (?item=, or ?key= for headers).
func (s *Server) handleRemoveListItem(w http.ResponseWriter, r *http.Request) {
	list := chi.URLParam(r, "list")
	q := r.URL.Query()

	var (
		after models.Settings
		err   error
	)
	if list == models.SetPersistentHeaders {
		after, err = s.Pipeline.RemoveHeader(r.Context(), q.Get("key"))
	} else {
		after, err = s.Pipeline.RemoveListItem(r.Context(), list, q.Get("item"))
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeSettings(w, after)
}

// sessionView is the session state with the cookie value withheld.
type sessionView struct {
	HasCookie        bool   `json:"hasCookie"`
	CurrentTabDomain string `json:"currentTabDomain"`
	IsConnected      bool   `json:"isConnected"`
}

// handleGetSession returns the session state.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap := s.Session.Snapshot()
	writeJSON(w, http.StatusOK, sessionView{
		HasCookie:        snap.TempCookie != "",
		CurrentTabDomain: snap.CurrentTabDomain,
		IsConnected:      snap.IsConnected,
	})
}

// handleCloseSession clears the per-page session values.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	s.Session.Disconnect()
	w.WriteHeader(http.StatusNoContent)
}

// cookieRequest sets the cookie directly, or imports it from the local browsers.
type cookieRequest struct {
	Cookie      string `json:"cookie"`
	FromBrowser bool   `json:"fromBrowser"`
	URL         string `json:"url"`
}

// handleSetCookie stores the cookie for the next dispatch.
func (s *Server) handleSetCookie(w http.ResponseWriter, r *http.Request) {
	var req cookieRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if !req.FromBrowser {
		s.Session.SetTempCookie(req.Cookie)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if s.Cookies == nil {
		http.Error(w, "browser cookie import is not available", http.StatusNotImplemented)
		return
	}
	if req.URL == "" {
		http.Error(w, "url is required when importing from the browser", http.StatusBadRequest)
		return
	}
	if _, err := s.Session.ImportCookie(r.Context(), s.Cookies, req.URL); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleConnect holds a UI connection open. Closing it clears the session cookie.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	if d := r.URL.Query().Get("domain"); d != "" {
		s.Session.SetCurrentTabDomain(strings.ToLower(d))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive(r.Context(), w, flusher, s.KeepAlive)

	logger.Pl.D(2, "UI connection closed, clearing session values")
	s.Session.Disconnect()
}

// handleTestFilter runs a user script against sample data.
func (s *Server) handleTestFilter(w http.ResponseWriter, r *http.Request) {
	var req models.FilterTestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.Pipeline.TestCustomFilter(r.Context(), req))
}

// handleStatus returns the latest connectivity check.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.Probe == nil {
		http.Error(w, "connectivity probe not running", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.Probe.Status())
}

// handleListNotifications lists recent notifications, newest first.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := uint64(defaultNotificationLimit)
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.ParseUint(q, 10, 64)
		if err != nil || n == 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	notes, err := s.Store.NotificationStore().ListNotifications(r.Context(), limit)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if notes == nil {
		notes = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// decodeBody decodes the JSON request body into dst, replying 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			http.Error(w, fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset), http.StatusBadRequest)
			return false
		}
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}
