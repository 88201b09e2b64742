package cfg

import (
	"context"
	"errors"
	cfgflags "variaredirect/internal/cfg/flags"
	"variaredirect/internal/contracts"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/keys"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/downloads/downloaders"
	"variaredirect/internal/notify"
	"variaredirect/internal/probe"
	"variaredirect/internal/redirect"
	"variaredirect/internal/sandbox"
	"variaredirect/internal/session"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

// app bundles the collaborators built from the current configuration.
type app struct {
	store    contracts.Store
	session  *session.Store
	rpc      *downloaders.Aria2RPC
	probe    *probe.Probe
	notifier notify.Multi
	pipeline *redirect.Pipeline
}

// newApp wires the pipeline. One-shot commands check connectivity inline
// instead of queueing checks for a background loop.
func newApp(ctx context.Context, s contracts.Store, oneShot bool) *app {
	a := &app{
		store:   s,
		session: session.NewStore(),
		rpc:     downloaders.NewAria2RPC(resolveSecret(), viper.GetDuration(keys.RPCTimeout)),
	}

	a.probe = probe.New(a.rpc, s.SettingsStore(), a.session,
		cfgflags.DurationOr(keys.ProbeMinInterval, consts.DefaultProbeMinInterval))

	a.notifier = notify.Multi{
		notify.Log{},
		notify.Feed{Store: s.NotificationStore()},
	}
	if urls := viper.GetStringSlice(keys.NotifyURLs); len(urls) > 0 {
		a.notifier = append(a.notifier, notify.Webhook{URLs: urls})
	}

	var trigger redirect.ProbeTrigger = a.probe
	if oneShot {
		trigger = inlineCheck{ctx: ctx, probe: a.probe}
	}

	a.pipeline = redirect.New(redirect.Deps{
		Store:     s,
		Session:   a.session,
		RPC:       a.rpc,
		Notifier:  a.notifier,
		Evaluator: sandbox.NewEvaluator(cfgflags.DurationOr(keys.SandboxTimeout, consts.DefaultSandboxTimeout)),
		Probe:     trigger,
	})
	return a
}

// inlineCheck runs a check as soon as one is triggered.
type inlineCheck struct {
	ctx   context.Context
	probe *probe.Probe
}

// Trigger implements redirect.ProbeTrigger.
func (c inlineCheck) Trigger(reason string) {
	st := c.probe.Check(c.ctx)
	logger.Pl.D(1, "Connectivity check (%s): connected=%v", reason, st.Connected)
	printStatus(st)
}

// resolveSecret returns the RPC secret from config, falling back to the keyring.
func resolveSecret() string {
	if s := viper.GetString(keys.Aria2Secret); s != "" {
		return s
	}

	s, err := keyring.Get(consts.KeyringService, consts.KeyringUser)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Pl.W("Could not read Aria2 secret from keyring, continuing without: %v", err)
		}
		return ""
	}
	return s
}

// secretOrigin describes where the RPC secret would be read from.
func secretOrigin() string {
	if viper.GetString(keys.Aria2Secret) != "" {
		return "Secret set by flag, environment or config file"
	}
	if _, err := keyring.Get(consts.KeyringService, consts.KeyringUser); err == nil {
		return "Secret read from the system keyring"
	}
	return "No secret configured"
}
