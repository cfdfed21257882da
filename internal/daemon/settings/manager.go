// Package settings owns the live settings state and the apply pipeline
// that fans a change out to every subsystem that consumes it.
package settings

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sber-whisper/desktop/internal/config"
	"github.com/sber-whisper/desktop/internal/daemon/bus"
	"github.com/sber-whisper/desktop/internal/daemon/hotkey"
	"github.com/sber-whisper/desktop/internal/models"
)

// Rebinder re-registers the push-to-talk chord.
type Rebinder interface {
	Rebind(raw string) error
}

// Config wires a Manager's collaborators. Any field may be nil; the
// corresponding pipeline step is skipped.
type Config struct {
	Logger *slog.Logger
	Hub    *bus.Hub
	Hotkey Rebinder

	// Autostart applies the auto-launch setting to the OS.
	Autostart func(enabled bool) error

	// PushConfig forwards language mode and popup timeout to the
	// recognition worker. It must not fail the save; worker trouble
	// surfaces through the event stream instead.
	PushConfig func(languageMode string, popupTimeoutSec int)
}

// Manager holds the current settings and applies changes in a fixed
// order: validate, persist, rebind hotkey, apply autostart, update
// memory, push worker config, publish the change.
type Manager struct {
	log        *slog.Logger
	hub        *bus.Hub
	hotkey     Rebinder
	autostart  func(bool) error
	pushConfig func(string, int)

	// load and save default to the config package and are swappable
	// in tests.
	load func() (*models.Settings, error)
	save func(*models.Settings) error

	mu      sync.RWMutex
	current *models.Settings
}

// NewManager returns a Manager holding default settings until Load runs.
func NewManager(cfg Config) *Manager {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		log:        log,
		hub:        cfg.Hub,
		hotkey:     cfg.Hotkey,
		autostart:  cfg.Autostart,
		pushConfig: cfg.PushConfig,
		load:       config.LoadSettings,
		save:       config.SaveSettings,
		current:    models.NewSettings(),
	}
}

// Load reads persisted settings into memory. Invalid persisted values
// fall back to defaults rather than blocking startup; the user can fix
// them from the UI once the daemon is up.
func (m *Manager) Load() error {
	loaded, err := m.load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if verr := m.Validate(loaded); verr != nil {
		m.log.Warn("persisted settings invalid, using defaults", "error", verr)
		loaded = models.NewSettings()
	}

	m.mu.Lock()
	m.current = loaded
	m.mu.Unlock()
	return nil
}

// Current returns a copy of the live settings.
func (m *Manager) Current() *models.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Clone()
}

// Save validates, persists, and applies new settings. Persisting happens
// before the apply steps so a crash mid-apply never loses the user's
// choice; the apply steps re-run on the next start.
func (m *Manager) Save(s *models.Settings) error {
	if err := m.Validate(s); err != nil {
		return err
	}

	if err := m.save(s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return m.apply(s)
}

// ReloadFromDisk re-reads the settings file after an external edit.
// A file matching the in-memory state is ignored, which breaks the
// save-then-watch feedback loop. Invalid file contents are logged and
// ignored; the last good settings stay active.
func (m *Manager) ReloadFromDisk() {
	loaded, err := m.load()
	if err != nil {
		m.log.Warn("failed to reload settings", "error", err)
		return
	}

	m.mu.RLock()
	same := *loaded == *m.current
	m.mu.RUnlock()
	if same {
		return
	}

	if err := m.Validate(loaded); err != nil {
		m.log.Warn("ignoring invalid settings from disk", "error", err)
		return
	}

	if err := m.apply(loaded); err != nil {
		m.log.Warn("failed to apply reloaded settings", "error", err)
		return
	}
	m.log.Info("settings reloaded from disk")
}

// Validate extends the model's own checks with chord syntax, which only
// the hotkey package can judge.
func (m *Manager) Validate(s *models.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if _, err := hotkey.ParseChord(s.Hotkey); err != nil {
		return fmt.Errorf("invalid hotkey '%s': %v", s.Hotkey, err)
	}
	return nil
}

func (m *Manager) apply(s *models.Settings) error {
	if m.hotkey != nil {
		if err := m.hotkey.Rebind(s.Hotkey); err != nil {
			return err
		}
	}

	if m.autostart != nil {
		if err := m.autostart(s.AutoLaunch); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.current = s.Clone()
	m.mu.Unlock()

	if m.pushConfig != nil {
		m.pushConfig(s.LanguageMode, s.PopupTimeoutSec)
	}

	if m.hub != nil {
		m.hub.Publish(bus.EventSettingsChanged, s)
	}

	m.log.Info("settings updated",
		"hotkey", s.Hotkey,
		"language_mode", s.LanguageMode,
		"popup_timeout_sec", s.PopupTimeoutSec,
		"auto_launch", s.AutoLaunch,
	)
	return nil
}
