// Package main is the entrypoint of variaredirect.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	"variaredirect/internal/cfg"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/domain/paths"
)

// main is the main entrypoint of the program.
func main() {
	os.Exit(run())
}

// run executes the program and returns the exit code.
func run() int {
	startTime := time.Now()

	if err := paths.InitProgFilesDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "%s exiting with error: %v\n", consts.ProgramName, err)
		return 1
	}

	// Setup logging
	pl, err := logger.SetupLogging(logger.LoggingConfig{
		LogFilePath: paths.LogFilePath,
		Console:     os.Stderr,
		Program:     consts.ProgramName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s exiting with error: %v\n", consts.ProgramName, err)
		return 1
	}
	logger.Pl = pl
	defer func() {
		if err := pl.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}()

	// Initialize application (DB, stores)
	store, database, err := initializeApplication()
	if err != nil {
		logger.Pl.E("Error initializing %s: %v", consts.ProgramName, err)
		return 1
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Pl.E("Failed to close database: %v", err)
		}
	}()

	logger.Pl.D(1, "%s (PID: %d) started at: %v",
		consts.ProgramName, os.Getpid(), startTime.Format("2006-01-02 15:04:05.00 MST"))

	// create cancellable context for shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	defer cancel()

	// ---- INIT COMMANDS ----
	if err := cfg.InitCommands(ctx, store); err != nil {
		logger.Pl.E("Error: %v", err)
		return 1
	}

	// ---- RUN PROGRAM ----
	if err := cfg.Execute(); err != nil {
		logger.Pl.E("Error: %v", err)
		return 1
	}

	logger.Pl.D(1, "%s finished in %v", consts.ProgramName, time.Since(startTime).Round(time.Millisecond))
	return 0
}
