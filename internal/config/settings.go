package config

import (
	"encoding/json"
	"os"

	"github.com/sber-whisper/desktop/internal/models"
)

// legacySettings tolerates every historical shape of app_settings.json.
// Early builds wrote platform-specific hotkey keys; later builds wrote a
// single hotkey field. All fields are optional and default individually.
type legacySettings struct {
	Hotkey          *string `json:"hotkey"`
	HotkeyWindows   *string `json:"hotkey_windows"`
	HotkeyMacOS     *string `json:"hotkey_macos"`
	PopupTimeoutSec *int    `json:"popup_timeout_sec"`
	AutoLaunch      *bool   `json:"auto_launch"`
	LanguageMode    *string `json:"language_mode"`
	Theme           *string `json:"theme"`
	Notifications   *bool   `json:"notifications"`
	Telemetry       *bool   `json:"telemetry"`
}

// LoadSettings loads settings from app_settings.json in the app config dir.
// A missing or unparseable file yields defaults; loading never fails once
// the config dir path resolves.
func LoadSettings() (*models.Settings, error) {
	path, err := SettingsFile()
	if err != nil {
		return nil, err
	}
	return loadSettingsFile(path), nil
}

// SaveSettings persists settings to app_settings.json.
func SaveSettings(settings *models.Settings) error {
	path, err := SettingsFile()
	if err != nil {
		return err
	}
	return SaveJSON(path, settings)
}

func loadSettingsFile(path string) *models.Settings {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.NewSettings()
	}

	var legacy legacySettings
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return models.NewSettings()
	}
	return mergeLegacy(&legacy)
}

// mergeLegacy overlays whichever fields the file carried onto defaults.
// The hotkey resolution order matches the historical migration: the
// unified key wins, then the Windows key, then the macOS key.
func mergeLegacy(legacy *legacySettings) *models.Settings {
	s := models.NewSettings()

	switch {
	case legacy.Hotkey != nil && *legacy.Hotkey != "":
		s.Hotkey = *legacy.Hotkey
	case legacy.HotkeyWindows != nil && *legacy.HotkeyWindows != "":
		s.Hotkey = *legacy.HotkeyWindows
	case legacy.HotkeyMacOS != nil && *legacy.HotkeyMacOS != "":
		s.Hotkey = *legacy.HotkeyMacOS
	}

	if legacy.PopupTimeoutSec != nil {
		s.PopupTimeoutSec = *legacy.PopupTimeoutSec
	}
	if legacy.AutoLaunch != nil {
		s.AutoLaunch = *legacy.AutoLaunch
	}
	if legacy.LanguageMode != nil {
		s.LanguageMode = *legacy.LanguageMode
	}
	if legacy.Theme != nil {
		s.Theme = *legacy.Theme
	}
	if legacy.Notifications != nil {
		s.Notifications = *legacy.Notifications
	}
	if legacy.Telemetry != nil {
		s.Telemetry = *legacy.Telemetry
	}
	return s
}
