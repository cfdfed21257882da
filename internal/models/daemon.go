package models

import (
	"fmt"
	"time"
)

// DaemonInfo represents the daemon connection information.
// This corresponds to daemon.yaml in the user config dir.
type DaemonInfo struct {
	Version    int       `yaml:"version"`
	Host       string    `yaml:"host"`
	Port       int       `yaml:"port"`
	PID        int       `yaml:"pid"`
	AppVersion string    `yaml:"app_version"`
	StartedAt  time.Time `yaml:"started_at"`
}

// NewDaemonInfo creates a new daemon info with current values.
func NewDaemonInfo(host string, port, pid int, appVersion string) *DaemonInfo {
	return &DaemonInfo{
		Version:    1,
		Host:       host,
		Port:       port,
		PID:        pid,
		AppVersion: appVersion,
		StartedAt:  time.Now().UTC(),
	}
}

// BaseURL returns the daemon's API base URL.
func (d *DaemonInfo) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", d.Host, d.Port)
}
