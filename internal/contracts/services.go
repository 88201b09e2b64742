package contracts

import (
	"context"
	"variaredirect/internal/downloads/downloaders"
	"variaredirect/internal/models"
)

// RPCClient sends requests to the download manager.
type RPCClient interface {
	AddURI(ctx context.Context, endpoint, uri string, params models.Params) (gid string, err error)
	GetVersion(ctx context.Context, endpoint string) (downloaders.Version, error)
}

// DownloadController controls the platform's record of a download.
type DownloadController interface {
	Cancel(ctx context.Context, id string) error
	Erase(ctx context.Context, id string) error
}

// Notifier emits user-visible alerts.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// CookieSession is the part of the session the dispatcher consumes.
type CookieSession interface {
	TempCookie() string
	ClearTempCookie()
}
