package models

import "time"

// DownloadEvent is a "download created" notification from the browser.
type DownloadEvent struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Referrer   string `json:"referrer"`
	Filename   string `json:"filename"`
	TotalBytes int64  `json:"totalBytes"`
	Mime       string `json:"mime"`
}

// RecordState is the state of a download record in history.
type RecordState string

// Record states. Erased records are removed from history entirely.
const (
	RecordCreated   RecordState = "created"
	RecordCancelled RecordState = "cancelled"
)

// DownloadRecord is the browser-side download as tracked in history.
type DownloadRecord struct {
	ID         string      `json:"id"`
	URL        string      `json:"url"`
	Referrer   string      `json:"referrer,omitempty"`
	Filename   string      `json:"filename"`
	Mime       string      `json:"mime,omitempty"`
	TotalBytes int64       `json:"totalBytes"`
	State      RecordState `json:"state"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}
