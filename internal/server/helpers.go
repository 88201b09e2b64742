package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/models"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/lo"
)

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(consts.ContentType, consts.ApplicationJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Pl.E("Failed to encode JSON response: %v", err)
	}
}

// writeSettings writes the settings as a document.
func writeSettings(w http.ResponseWriter, s models.Settings) {
	doc, err := s.Document()
	if err != nil {
		http.Error(w, "failed to encode settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// splitKeys splits a comma-separated key list, dropping blanks.
func splitKeys(q string) []string {
	keys := lo.Map(strings.Split(q, ","), func(k string, _ int) string {
		return strings.TrimSpace(k)
	})
	return lo.Compact(keys)
}

// keepAlive writes a comment line every interval until ctx ends.
func keepAlive(ctx context.Context, w io.Writer, f http.Flusher, interval time.Duration) {
	if interval <= 0 {
		interval = consts.SessionKeepAlive
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
				return
			}
			f.Flush()
		}
	}
}

// requestLogger logs each request through the program logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logger.Pl.D(2, "%s %s -> %d (%s) [%s]",
				r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
		}()
		next.ServeHTTP(ww, r)
	})
}
