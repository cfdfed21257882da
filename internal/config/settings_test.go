package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sber-whisper/desktop/internal/models"
)

func writeSettingsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), SettingsFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write settings file: %v", err)
	}
	return path
}

func TestLoadSettingsFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)
	got := loadSettingsFile(path)
	want := models.NewSettings()

	if *got != *want {
		t.Errorf("loadSettingsFile(missing) = %+v, want defaults %+v", got, want)
	}
	if got.PopupTimeoutSec != 10 {
		t.Errorf("default PopupTimeoutSec = %d, want 10", got.PopupTimeoutSec)
	}
	if got.LanguageMode != "ru" {
		t.Errorf("default LanguageMode = %q, want %q", got.LanguageMode, "ru")
	}
	if got.Theme != "siri_aurora" {
		t.Errorf("default Theme = %q, want %q", got.Theme, "siri_aurora")
	}
}

func TestLoadSettingsFile(t *testing.T) {
	def := models.NewSettings()

	tests := []struct {
		name        string
		content     string
		wantHotkey  string
		wantTimeout int
		wantLang    string
	}{
		{
			name:        "full modern file",
			content:     `{"hotkey":"Alt+Space","popup_timeout_sec":30,"auto_launch":true,"language_mode":"en","theme":"plain"}`,
			wantHotkey:  "Alt+Space",
			wantTimeout: 30,
			wantLang:    "en",
		},
		{
			name:        "legacy windows hotkey",
			content:     `{"hotkey_windows":"Ctrl+Shift+G","popup_timeout_sec":15}`,
			wantHotkey:  "Ctrl+Shift+G",
			wantTimeout: 15,
			wantLang:    def.LanguageMode,
		},
		{
			name:        "legacy macos hotkey",
			content:     `{"hotkey_macos":"Cmd+Shift+G"}`,
			wantHotkey:  "Cmd+Shift+G",
			wantTimeout: def.PopupTimeoutSec,
			wantLang:    def.LanguageMode,
		},
		{
			name:        "unified key wins over platform keys",
			content:     `{"hotkey":"Ctrl+G","hotkey_windows":"Ctrl+1","hotkey_macos":"Cmd+1"}`,
			wantHotkey:  "Ctrl+G",
			wantTimeout: def.PopupTimeoutSec,
			wantLang:    def.LanguageMode,
		},
		{
			name:        "windows key wins over macos key",
			content:     `{"hotkey_windows":"Ctrl+1","hotkey_macos":"Cmd+1"}`,
			wantHotkey:  "Ctrl+1",
			wantTimeout: def.PopupTimeoutSec,
			wantLang:    def.LanguageMode,
		},
		{
			name:        "partial file defaults the rest",
			content:     `{"language_mode":"auto"}`,
			wantHotkey:  def.Hotkey,
			wantTimeout: def.PopupTimeoutSec,
			wantLang:    "auto",
		},
		{
			name:        "empty object",
			content:     `{}`,
			wantHotkey:  def.Hotkey,
			wantTimeout: def.PopupTimeoutSec,
			wantLang:    def.LanguageMode,
		},
		{
			name:        "corrupt file falls back to defaults",
			content:     `{not json`,
			wantHotkey:  def.Hotkey,
			wantTimeout: def.PopupTimeoutSec,
			wantLang:    def.LanguageMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSettingsFile(t, tt.content)
			got := loadSettingsFile(path)

			if got.Hotkey != tt.wantHotkey {
				t.Errorf("Hotkey = %q, want %q", got.Hotkey, tt.wantHotkey)
			}
			if got.PopupTimeoutSec != tt.wantTimeout {
				t.Errorf("PopupTimeoutSec = %d, want %d", got.PopupTimeoutSec, tt.wantTimeout)
			}
			if got.LanguageMode != tt.wantLang {
				t.Errorf("LanguageMode = %q, want %q", got.LanguageMode, tt.wantLang)
			}
		})
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)

	in := models.NewSettings()
	in.Hotkey = "Ctrl+Alt+R"
	in.PopupTimeoutSec = 45
	in.LanguageMode = "en"
	in.Telemetry = true

	if err := SaveJSON(path, in); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	got := loadSettingsFile(path)
	if *got != *in {
		t.Errorf("round trip = %+v, want %+v", got, in)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Settings)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(s *models.Settings) {}, wantErr: false},
		{name: "timeout lower bound", mutate: func(s *models.Settings) { s.PopupTimeoutSec = 1 }, wantErr: false},
		{name: "timeout upper bound", mutate: func(s *models.Settings) { s.PopupTimeoutSec = 120 }, wantErr: false},
		{name: "timeout zero", mutate: func(s *models.Settings) { s.PopupTimeoutSec = 0 }, wantErr: true},
		{name: "timeout too large", mutate: func(s *models.Settings) { s.PopupTimeoutSec = 121 }, wantErr: true},
		{name: "empty hotkey", mutate: func(s *models.Settings) { s.Hotkey = "  " }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.NewSettings()
			tt.mutate(s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
