// Package logger holds the program logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
	"variaredirect/internal/domain/consts"

	"github.com/rs/zerolog"
)

// Pl holds the global *ProgramLogger variable.
//
// Usable before SetupLogging is called, in which case it writes to stdout only.
var Pl = newProgramLogger(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}, "variaredirect")

// LoggingConfig holds the options for the program logger.
type LoggingConfig struct {
	LogFilePath string
	Console     io.Writer
	Program     string
	Level       int
}

// ProgramLogger wraps a zerolog logger with the program's I/S/W/E/D call style.
type ProgramLogger struct {
	mu    sync.RWMutex
	zl    zerolog.Logger
	level int
	file  *os.File
}

// newProgramLogger creates a logger writing to w.
func newProgramLogger(w io.Writer, program string) *ProgramLogger {
	return &ProgramLogger{
		zl: zerolog.New(w).With().Timestamp().Str("program", program).Logger(),
	}
}

// SetupLogging creates the log file and returns a logger writing to it and to the console.
func SetupLogging(cfg LoggingConfig) (*ProgramLogger, error) {
	writers := make([]io.Writer, 0, 2)
	if cfg.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: cfg.Console, TimeFormat: time.Kitchen})
	}

	var f *os.File
	if cfg.LogFilePath != "" {
		var err error
		f, err = os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, consts.PermsLogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %q: %w", cfg.LogFilePath, err)
		}
		writers = append(writers, f)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	program := cfg.Program
	if program == "" {
		program = "variaredirect"
	}

	pl := newProgramLogger(zerolog.MultiLevelWriter(writers...), program)
	pl.file = f
	pl.SetLevel(cfg.Level)
	return pl, nil
}

// SetLevel sets the debug verbosity (0-5).
func (pl *ProgramLogger) SetLevel(l int) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	pl.level = l
}

// Level returns the debug verbosity.
func (pl *ProgramLogger) Level() int {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return pl.level
}

// Zerolog exposes the underlying logger for structured fields.
func (pl *ProgramLogger) Zerolog() *zerolog.Logger {
	return &pl.zl
}

// Close closes the log file, if any.
func (pl *ProgramLogger) Close() error {
	if pl.file == nil {
		return nil
	}
	return pl.file.Close()
}

// I logs an info message.
func (pl *ProgramLogger) I(format string, args ...any) {
	pl.zl.Info().Msgf(format, args...)
}

// S logs a success message.
func (pl *ProgramLogger) S(format string, args ...any) {
	pl.zl.Info().Bool("success", true).Msgf(format, args...)
}

// W logs a warning.
func (pl *ProgramLogger) W(format string, args ...any) {
	pl.zl.Warn().Msgf(format, args...)
}

// E logs an error.
func (pl *ProgramLogger) E(format string, args ...any) {
	pl.zl.Error().Msgf(format, args...)
}

// D logs a debug message when the debug level is at least l.
func (pl *ProgramLogger) D(l int, format string, args ...any) {
	if l > pl.Level() {
		return
	}
	pl.zl.Debug().Int("lvl", l).Msgf(format, args...)
}
