// Package cfg provides configuration and command-line interface setup.
package cfg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	cfgflags "variaredirect/internal/cfg/flags"
	"variaredirect/internal/contracts"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/keys"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/domain/paths"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           consts.ProgramName,
	Short:         "Redirects browser downloads to an Aria2 server.",
	Long:          "Filters download events, composes Aria2 parameters and submits them over JSON-RPC.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(viper.GetString(keys.EnvFile)); err != nil {
			return err
		}
		if err := loadConfigFile(viper.GetString(keys.ConfigFile)); err != nil {
			return err
		}
		logger.Pl.SetLevel(viper.GetInt(keys.DebugLevel))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// InitCommands initializes all commands and their flags.
func InitCommands(ctx context.Context, s contracts.Store) error {
	viper.SetEnvPrefix(keys.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_")) // "aria2-secret" reads VARIAREDIRECT_ARIA2_SECRET
	viper.AutomaticEnv()

	if err := cfgflags.InitProgramFlags(rootCmd); err != nil {
		return err
	}

	serve, err := serveCmd(ctx, s)
	if err != nil {
		return err
	}
	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(settingsCmds(ctx, s))
	rootCmd.AddCommand(filterCmds(ctx, s))
	rootCmd.AddCommand(secretCmds())
	rootCmd.AddCommand(sessionCmds(ctx))
	rootCmd.AddCommand(probeCmd(ctx, s))
	rootCmd.AddCommand(redirectCmd(ctx, s))
	rootCmd.AddCommand(downloadsCmds(ctx, s))
	rootCmd.AddCommand(notificationsCmd(ctx, s))

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadEnvFile loads a dotenv file into the environment.
//
// With no explicit path the program directory's .env is used when present.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		if paths.HomeProgDir == "" {
			return nil
		}
		path = filepath.Join(paths.HomeProgDir, ".env")
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed loading env file %q: %w", path, err)
	}
	logger.Pl.D(1, "Loaded environment from %q", path)
	return nil
}

// loadConfigFile merges a config file into Viper.
//
// With no explicit path the default config file is used when present.
func loadConfigFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = paths.ConfigFilePath
		if path == "" {
			return nil
		}
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed check for config file path: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config file %q is a directory, should be a file", path)
	}

	viper.SetConfigFile(path)
	if err := viper.MergeInConfig(); err != nil {
		return fmt.Errorf("failed loading config file %q: %w", path, err)
	}
	logger.Pl.D(1, "Loaded config from %q", path)
	return nil
}
