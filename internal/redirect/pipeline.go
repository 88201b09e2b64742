// Package redirect runs download events through the filter chain, custom filter,
// path composer and dispatcher.
package redirect

import (
	"context"
	"time"
	"variaredirect/internal/compose"
	"variaredirect/internal/contracts"
	"variaredirect/internal/domain/errs"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/downloads"
	"variaredirect/internal/filtering"
	"variaredirect/internal/models"
	"variaredirect/internal/notify"
	"variaredirect/internal/sandbox"
	"variaredirect/internal/session"
)

// ProbeTrigger requests a background connectivity check.
type ProbeTrigger interface {
	Trigger(reason string)
}

// Pipeline handles download events end to end.
type Pipeline struct {
	Settings   contracts.SettingsStore
	Records    contracts.DownloadStore
	Session    *session.Store
	Evaluator  *sandbox.Evaluator
	Dispatcher *downloads.Dispatcher
	Notifier   contracts.Notifier
	Probe      ProbeTrigger

	// Now returns the date used for date subfolders.
	Now func() time.Time
}

// Deps are the collaborators of a pipeline.
type Deps struct {
	Store     contracts.Store
	Session   *session.Store
	RPC       contracts.RPCClient
	Notifier  contracts.Notifier
	Evaluator *sandbox.Evaluator
	Probe     ProbeTrigger
}

// New wires a pipeline from its collaborators.
func New(d Deps) *Pipeline {
	records := d.Store.DownloadStore()
	return &Pipeline{
		Settings:   d.Store.SettingsStore(),
		Records:    records,
		Session:    d.Session,
		Evaluator:  d.Evaluator,
		Dispatcher: downloads.NewDispatcher(d.RPC, records, d.Session, d.Notifier),
		Notifier:   d.Notifier,
		Probe:      d.Probe,
		Now:        time.Now,
	}
}

// HandleDownload processes one "download created" event.
//
// Rejected and skipped events leave the platform download alone. Only a
// dispatch attempt consumes the session cookie.
func (p *Pipeline) HandleDownload(ctx context.Context, ev models.DownloadEvent) models.Outcome {
	if err := p.Records.AddRecord(ctx, ev); err != nil {
		logger.Pl.W("Could not record download %q: %v", ev.ID, err)
	}

	// Snapshots for the whole of this event.
	s, err := p.Settings.GetSettings(ctx)
	if err != nil {
		logger.Pl.E("Could not read settings, leaving download %q alone: %v", ev.ID, err)
		return failed(err)
	}
	sess := p.Session.Snapshot()

	verdict := filtering.Evaluate(ev, s)
	if !verdict.Proceed {
		return models.Outcome{
			Action: models.ActionSkipped,
			Reason: verdict.Reason,
			Kind:   errs.Kind(verdict.Err),
		}
	}

	var override *models.FilterResult
	if s.CustomFilterScript != "" {
		override, err = p.Evaluator.Evaluate(ctx, s.CustomFilterScript, sandbox.ViewFor(ev))
		if err != nil {
			logger.Pl.E("Custom filter failed for %q: %v", ev.URL, err)
			notify.Send(ctx, p.Notifier, notify.FilterFailed(ev, err))
			return failed(err)
		}
		if override.Skip {
			logger.Pl.D(1, "Custom filter skipped %q", ev.URL)
			return models.Outcome{Action: models.ActionSkipped, Reason: "custom filter requested skip"}
		}
	}

	params := compose.Compose(ev, s, override, p.now())

	gid, err := p.Dispatcher.Dispatch(ctx, downloads.Request{
		Event:             ev,
		RPCURL:            s.RPCURL,
		PersistentHeaders: s.PersistentHeaders,
		Cookie:            sess.TempCookie,
		Params:            params,
	})
	if err != nil {
		return failed(err)
	}
	return models.Outcome{Action: models.ActionRedirected, GID: gid}
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func failed(err error) models.Outcome {
	return models.Outcome{
		Action: models.ActionFailed,
		Reason: err.Error(),
		Kind:   errs.Kind(err),
	}
}
