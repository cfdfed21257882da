package models

import (
	"fmt"
	"runtime"
	"strings"
)

// Language modes accepted by the sidecar's set_config command.
const (
	LanguageRussian = "ru"
	LanguageEnglish = "en"
	LanguageAuto    = "auto"
)

// Settings represents user-facing application settings.
// This corresponds to app_settings.json in the user config dir.
type Settings struct {
	Hotkey          string `json:"hotkey"`
	PopupTimeoutSec int    `json:"popup_timeout_sec"`
	AutoLaunch      bool   `json:"auto_launch"`
	LanguageMode    string `json:"language_mode"`
	Theme           string `json:"theme"`
	Notifications   bool   `json:"notifications"`
	Telemetry       bool   `json:"telemetry"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Hotkey:          DefaultHotkey(),
		PopupTimeoutSec: 10,
		AutoLaunch:      false,
		LanguageMode:    LanguageRussian,
		Theme:           "siri_aurora",
		Notifications:   true,
		Telemetry:       false,
	}
}

// DefaultHotkey returns the platform default push-to-talk chord.
func DefaultHotkey() string {
	if runtime.GOOS == "darwin" {
		return "Cmd+G"
	}
	return "Ctrl+G"
}

// Validate checks for values that cannot be applied. Hotkey chord syntax is
// validated separately by the hotkey manager, which owns the parser.
func (s *Settings) Validate() error {
	if s.PopupTimeoutSec < 1 || s.PopupTimeoutSec > 120 {
		return fmt.Errorf("popup timeout must be between 1 and 120 seconds")
	}
	if strings.TrimSpace(s.Hotkey) == "" {
		return fmt.Errorf("hotkey must not be empty")
	}
	return nil
}

// Clone returns a copy so callers can mutate without racing the manager.
func (s *Settings) Clone() *Settings {
	c := *s
	return &c
}
