// Package downloads hands accepted downloads to aria2 and reconciles the platform record.
package downloads

import (
	"context"
	"variaredirect/internal/contracts"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/models"
	"variaredirect/internal/notify"
)

// Dispatcher sends redirect requests.
type Dispatcher struct {
	RPC      contracts.RPCClient
	Records  contracts.DownloadController
	Session  contracts.CookieSession
	Notifier contracts.Notifier
}

// Request is everything one dispatch needs, taken from the event's snapshots.
type Request struct {
	Event             models.DownloadEvent
	RPCURL            string
	PersistentHeaders []models.HeaderItem
	Cookie            string
	Params            models.Params
}

// NewDispatcher returns a dispatcher.
func NewDispatcher(rpc contracts.RPCClient, records contracts.DownloadController, session contracts.CookieSession, notifier contracts.Notifier) *Dispatcher {
	return &Dispatcher{
		RPC:      rpc,
		Records:  records,
		Session:  session,
		Notifier: notifier,
	}
}

// Dispatch sends the download to aria2.
//
// On acceptance the platform record is cancelled then erased, both best-effort.
// On failure the record is left alone and a notification is emitted. The
// session cookie is cleared once in every case.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (gid string, err error) {
	defer d.Session.ClearTempCookie()

	params := req.Params
	params.Header = BuildHeaders(req.PersistentHeaders, req.Event.Referrer, req.Cookie)

	logger.Pl.D(1, "Redirecting %q to aria2 at %q (out=%q dir=%q, %d headers)",
		req.Event.URL, req.RPCURL, params.Out, params.Dir, len(params.Header))

	gid, err = d.RPC.AddURI(ctx, req.RPCURL, req.Event.URL, params)
	if err != nil {
		logger.Pl.E("Failed to redirect %q: %v", req.Event.URL, err)
		d.notifyFailure(ctx, req.Event, err)
		return "", err
	}

	logger.Pl.S("Redirected %q to aria2 (GID %s)", req.Event.URL, gid)
	d.reconcile(ctx, req.Event.ID)
	return gid, nil
}

// reconcile cancels then erases the platform record. Failures are logged only.
func (d *Dispatcher) reconcile(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := d.Records.Cancel(ctx, id); err != nil {
		logger.Pl.W("Could not cancel original download %q: %v", id, err)
	}
	if err := d.Records.Erase(ctx, id); err != nil {
		logger.Pl.W("Could not erase original download %q from history: %v", id, err)
	}
}

// notifyFailure emits the redirect-failed alert.
func (d *Dispatcher) notifyFailure(ctx context.Context, ev models.DownloadEvent, cause error) {
	notify.Send(ctx, d.Notifier, notify.RedirectFailed(ev, cause))
}
