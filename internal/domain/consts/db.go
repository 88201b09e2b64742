package consts

// Tables
const (
	DBSettings      = "settings"
	DBDownloads     = "downloads"
	DBNotifications = "notifications"
)

// Settings
const (
	QSettingsID        = "id"
	QSettingsDocument  = "document"
	QSettingsUpdatedAt = "updated_at"
)

// Downloads
const (
	QDLID        = "id"
	QDLURL       = "url"
	QDLReferrer  = "referrer"
	QDLFilename  = "filename"
	QDLMime      = "mime"
	QDLBytes     = "total_bytes"
	QDLState     = "state"
	QDLCreatedAt = "created_at"
	QDLUpdatedAt = "updated_at"
)

// Notifications
const (
	QNotifyID        = "id"
	QNotifyTitle     = "title"
	QNotifyMessage   = "message"
	QNotifyCreatedAt = "created_at"
)

// SettingsRowID is the fixed primary key of the single settings document.
const SettingsRowID = 1
