// Package cfgflags handles Cobra/Viper flags.
package cfgflags

import (
	"time"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/keys"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// InitProgramFlags initializes persistent flags related to the core program. E.g. logging level.
func InitProgramFlags(rootCmd *cobra.Command) error {
	pf := rootCmd.PersistentFlags()

	// Debug level
	pf.Int(keys.DebugLevel, 0, "Debugging level (0 - 5)")

	// Config sources
	pf.String(keys.ConfigFile, "", "Config file (yaml, toml, json)")
	pf.String(keys.EnvFile, "", "Dotenv file loaded before the config file")

	// Aria2
	pf.String(keys.Aria2Secret, "", "Aria2 RPC secret (falls back to the system keyring)")
	pf.Duration(keys.RPCTimeout, 0, "Timeout for Aria2 RPC calls (0 for none)")

	// Custom filter
	pf.Duration(keys.SandboxTimeout, consts.DefaultSandboxTimeout, "Time limit for one custom filter evaluation")

	// Connectivity probe
	pf.Duration(keys.ProbeMinInterval, consts.DefaultProbeMinInterval, "Minimum spacing between triggered connectivity checks")

	// Notifications
	pf.StringSlice(keys.NotifyURLs, nil, "Webhook URLs receiving failure notifications")

	return bindAll(pf, keys.DebugLevel, keys.ConfigFile, keys.EnvFile, keys.Aria2Secret,
		keys.RPCTimeout, keys.SandboxTimeout, keys.ProbeMinInterval, keys.NotifyURLs)
}

// InitServerFlags initializes flags for the serve command.
func InitServerFlags(cmd *cobra.Command) error {
	cmd.Flags().String(keys.ListenAddr, consts.DefaultListenAddr, "Address the event API listens on")
	return bindAll(cmd.Flags(), keys.ListenAddr)
}

// DurationOr returns the Viper duration for key, or def when unset or not positive.
func DurationOr(key string, def time.Duration) time.Duration {
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return def
}

// bindAll binds each named flag to its Viper key.
func bindAll(fs *pflag.FlagSet, names ...string) error {
	for _, n := range names {
		if err := viper.BindPFlag(n, fs.Lookup(n)); err != nil {
			return err
		}
	}
	return nil
}
