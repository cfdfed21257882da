// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// AppDirName is the name of the per-user application directory,
	// created under os.UserConfigDir.
	AppDirName = "sber-whisper"

	// LogsDirName is the name of the logs directory inside the app dir.
	// The sidecar receives this directory via SBER_WHISPER_LOG_DIR and
	// writes its own asr.log next to the daemon's app.log.
	LogsDirName = "logs"
)

// File names
const (
	SettingsFileName = "app_settings.json"
	DaemonFileName   = "daemon.yaml"
	AppLogFileName   = "app.log"
)

// AppDir returns the path to the per-user application directory.
func AppDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppDirName), nil
}

// SettingsFile returns the path to app_settings.json.
func SettingsFile() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// DaemonFile returns the path to the daemon.yaml runtime info file.
func DaemonFile() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DaemonFileName), nil
}

// LogsDir returns the path to the logs directory.
func LogsDir() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogsDirName), nil
}

// AppLogFile returns the path to the daemon's rotating app.log.
func AppLogFile() (string, error) {
	dir, err := LogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppLogFileName), nil
}

// EnsureAppDir creates the application directory if it doesn't exist.
func EnsureAppDir() error {
	dir, err := AppDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// EnsureLogsDir creates the logs directory if it doesn't exist.
func EnsureLogsDir() error {
	dir, err := LogsDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
