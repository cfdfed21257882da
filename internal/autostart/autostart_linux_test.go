//go:build linux

package autostart

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInstallAndUninstall(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	if err := install("/usr/local/bin/sberwhisperd"); err != nil {
		t.Fatalf("install() error = %v", err)
	}

	path := filepath.Join(tmp, "autostart", "sber-whisper.desktop")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("desktop entry not written: %v", err)
	}
	if !strings.Contains(string(data), "Exec=/usr/local/bin/sberwhisperd") {
		t.Errorf("desktop entry missing Exec line:\n%s", data)
	}
	if !strings.Contains(string(data), "Name=Sber Whisper") {
		t.Errorf("desktop entry missing Name line:\n%s", data)
	}

	if err := uninstall(); err != nil {
		t.Fatalf("uninstall() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("desktop entry still present after uninstall: %v", err)
	}
}

func TestUninstallMissingEntryReportsNotExist(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	err := uninstall()
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("uninstall() error = %v, want ErrNotExist", err)
	}
}

func TestApplyDisableToleratesAbsentEntry(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := Apply(log, false); err != nil {
		t.Errorf("Apply(disable) on absent entry error = %v, want nil", err)
	}
}

func TestApplyEnableWritesEntry(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := Apply(log, true); err != nil {
		t.Fatalf("Apply(enable) error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "autostart", "sber-whisper.desktop")); err != nil {
		t.Errorf("desktop entry not created: %v", err)
	}
}
