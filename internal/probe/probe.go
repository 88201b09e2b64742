// Package probe tracks whether the aria2 endpoint is reachable.
package probe

import (
	"context"
	"strings"
	"sync"
	"time"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/errs"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/downloads/downloaders"
	"variaredirect/internal/models"

	"golang.org/x/time/rate"
)

// VersionGetter calls aria2.getVersion.
type VersionGetter interface {
	GetVersion(ctx context.Context, endpoint string) (downloaders.Version, error)
}

// SettingsGetter reads the current settings.
type SettingsGetter interface {
	GetSettings(ctx context.Context) (models.Settings, error)
}

// Indicator is the two-state connectivity indicator.
type Indicator interface {
	SetConnected(connected bool) (changed bool)
}

// Status is the result of the latest check.
type Status struct {
	Connected bool      `json:"connected"`
	RPCURL    string    `json:"rpcUrl"`
	Version   string    `json:"version,omitempty"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Probe checks connectivity on demand and on coalesced triggers.
type Probe struct {
	rpc       VersionGetter
	settings  SettingsGetter
	indicator Indicator
	timeout   time.Duration

	limiter *rate.Limiter
	kick    chan string

	mu     sync.RWMutex
	status Status
}

// New returns a probe. Triggers are spaced at least minInterval apart.
func New(rpc VersionGetter, settings SettingsGetter, indicator Indicator, minInterval time.Duration) *Probe {
	if minInterval <= 0 {
		minInterval = consts.DefaultProbeMinInterval
	}
	return &Probe{
		rpc:       rpc,
		settings:  settings,
		indicator: indicator,
		timeout:   consts.ProbeTimeout,
		limiter:   rate.NewLimiter(rate.Every(minInterval), 1),
		kick:      make(chan string, 1),
	}
}

// Check reads the configured endpoint and calls aria2.getVersion.
//
// An empty rpcUrl counts as disconnected without any request.
func (p *Probe) Check(ctx context.Context) Status {
	st := Status{CheckedAt: time.Now()}

	s, err := p.settings.GetSettings(ctx)
	if err != nil {
		st.Error = err.Error()
		return p.record(st)
	}
	st.RPCURL = strings.TrimSpace(s.RPCURL)
	if st.RPCURL == "" {
		st.Error = errs.ErrConfigurationMissing.Error()
		return p.record(st)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	v, err := p.rpc.GetVersion(callCtx, st.RPCURL)
	if err != nil {
		st.Error = err.Error()
		return p.record(st)
	}
	st.Connected = true
	st.Version = v.Version
	return p.record(st)
}

// Status returns the latest check result.
func (p *Probe) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Trigger requests a check without waiting for it. Bursts collapse into one pending check.
func (p *Probe) Trigger(reason string) {
	select {
	case p.kick <- reason:
		logger.Pl.D(2, "Connectivity check queued (%s)", reason)
	default:
		logger.Pl.D(3, "Connectivity check already pending, dropping trigger (%s)", reason)
	}
}

// Run services triggers until ctx is done.
func (p *Probe) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-p.kick:
			if err := p.limiter.Wait(ctx); err != nil {
				return
			}
			st := p.Check(ctx)
			logger.Pl.D(1, "Connectivity check (%s): connected=%v", reason, st.Connected)
		}
	}
}

// record stores st and updates the indicator, logging transitions.
func (p *Probe) record(st Status) Status {
	p.mu.Lock()
	p.status = st
	p.mu.Unlock()

	if p.indicator != nil && p.indicator.SetConnected(st.Connected) {
		if st.Connected {
			logger.Pl.S("Connected to aria2 %s at %q", st.Version, st.RPCURL)
		} else {
			logger.Pl.W("Disconnected from aria2 at %q: %s", st.RPCURL, st.Error)
		}
	}
	return st
}
