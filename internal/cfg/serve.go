package cfg

import (
	"context"
	"fmt"
	cfgflags "variaredirect/internal/cfg/flags"
	"variaredirect/internal/contracts"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/keys"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/server"
	"variaredirect/internal/session"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd runs the event API and the connectivity probe.
func serveCmd(ctx context.Context, s contracts.Store) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Listen for download events",
		Long:  "Serve accepts download events over HTTP, redirecting accepted downloads to Aria2.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(ctx, s, false)

			seeded, err := s.SettingsStore().SeedDefaults(ctx)
			if err != nil {
				return fmt.Errorf("failed to seed settings: %w", err)
			}
			if seeded {
				logger.Pl.S("Stored default settings")
				a.probe.Trigger("install")
			}
			a.probe.Trigger("startup")
			go a.probe.Run(ctx)

			h := server.NewRouter(&server.Server{
				Pipeline:  a.pipeline,
				Store:     s,
				Session:   a.session,
				Probe:     a.probe,
				Cookies:   session.BrowserCookies{},
				KeepAlive: consts.SessionKeepAlive,
			})
			return server.StartServer(ctx, viper.GetString(keys.ListenAddr), h)
		},
	}

	if err := cfgflags.InitServerFlags(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}
