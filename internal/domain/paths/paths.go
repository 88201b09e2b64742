// Package paths initializes the program's filepaths and directories.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"variaredirect/internal/domain/consts"
)

const (
	homeDir     = ".variaredirect"
	dbFile      = "variaredirect.db"
	logFile     = "variaredirect.log"
	defaultConf = "config.yaml"
)

// File and directory path strings.
var (
	HomeProgDir    string
	DBFilePath     string
	LogFilePath    string
	ConfigFilePath string
)

// InitProgFilesDirs initializes necessary program directories and filepaths.
func InitProgFilesDirs() error {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		return errors.New("failed to get home directory")
	}
	return initAt(filepath.Join(userHomeDir, homeDir))
}

// initAt sets all paths relative to dir, creating it if missing.
func initAt(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, consts.PermsHomeProgDir); err != nil {
			return fmt.Errorf("failed to make directories: %w", err)
		}
	}

	HomeProgDir = dir
	DBFilePath = filepath.Join(dir, dbFile)
	LogFilePath = filepath.Join(dir, logFile)
	ConfigFilePath = filepath.Join(dir, defaultConf)
	return nil
}
