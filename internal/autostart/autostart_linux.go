//go:build linux

package autostart

import (
	"fmt"
	"os"
	"path/filepath"
)

const desktopFileName = "sber-whisper.desktop"

func entryPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "autostart", desktopFileName), nil
}

func install(exe string) error {
	path, err := entryPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	entry := fmt.Sprintf("[Desktop Entry]\nType=Application\nName=Sber Whisper\nExec=%s\nX-GNOME-Autostart-enabled=true\n", exe)
	return os.WriteFile(path, []byte(entry), 0o644)
}

func uninstall() error {
	path, err := entryPath()
	if err != nil {
		return err
	}
	return os.Remove(path)
}
