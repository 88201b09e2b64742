package models

// SessionData holds short-lived values shared between the UI and the dispatcher.
type SessionData struct {
	TempCookie       string `json:"tempCookie"`
	CurrentTabDomain string `json:"currentTabDomain"`
	IsConnected      bool   `json:"isConnected"`
}
