package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sber-whisper/desktop/internal/config"
	"github.com/sber-whisper/desktop/internal/daemon/hotkey"
	"github.com/sber-whisper/desktop/internal/models"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
	Long: `Show or change application settings.

Changes go through the running daemon so they apply immediately (hotkey
rebind, sidecar config push). With no daemon running, changes are written
to the settings file and picked up on the next daemon start.`,
	RunE: runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting. Keys:

  hotkey         push-to-talk chord, e.g. "Ctrl+G"
  popup-timeout  seconds the popup stays up (1-120)
  language       transcription language mode: ru, en, auto
  theme          popup theme name
  auto-launch    start the daemon at login: true/false
  notifications  desktop notifications: true/false
  telemetry      anonymous usage reporting: true/false`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.SettingsFile()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	s, viaDaemon, err := currentSettings()
	if err != nil {
		return err
	}

	source := "settings file"
	if viaDaemon {
		source = "running daemon"
	}
	fmt.Printf("%s %s\n", styleBrand.Render("Settings"), styleHint.Render("(from "+source+")"))
	fmt.Printf("  %s %s\n", styleLabel.Render("hotkey        "), styleValue.Render(s.Hotkey))
	fmt.Printf("  %s %s\n", styleLabel.Render("popup-timeout "), styleValue.Render(fmt.Sprintf("%d s", s.PopupTimeoutSec)))
	fmt.Printf("  %s %s\n", styleLabel.Render("language      "), styleValue.Render(s.LanguageMode))
	fmt.Printf("  %s %s\n", styleLabel.Render("theme         "), styleValue.Render(s.Theme))
	fmt.Printf("  %s %s\n", styleLabel.Render("auto-launch   "), styleValue.Render(strconv.FormatBool(s.AutoLaunch)))
	fmt.Printf("  %s %s\n", styleLabel.Render("notifications "), styleValue.Render(strconv.FormatBool(s.Notifications)))
	fmt.Printf("  %s %s\n", styleLabel.Render("telemetry     "), styleValue.Render(strconv.FormatBool(s.Telemetry)))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	s, viaDaemon, err := currentSettings()
	if err != nil {
		return err
	}
	if err := applySettingsKey(s, key, value); err != nil {
		return err
	}

	if viaDaemon {
		client, err := Connect()
		if err != nil {
			return err
		}
		if _, err := client.SaveSettings(s); err != nil {
			return err
		}
		fmt.Printf("%s %s = %s (applied)\n", styleSuccess.Render("Updated"), key, value)
		return nil
	}

	// No daemon: validate locally and persist for the next start.
	if err := s.Validate(); err != nil {
		return err
	}
	if _, err := hotkey.ParseChord(s.Hotkey); err != nil {
		return fmt.Errorf("invalid hotkey '%s': %v", s.Hotkey, err)
	}
	if err := config.SaveSettings(s); err != nil {
		return err
	}
	fmt.Printf("%s %s = %s (daemon not running; applies on next start)\n", styleSuccess.Render("Updated"), key, value)
	return nil
}

// currentSettings reads settings from the daemon when it is up, else from
// disk. Reports which source was used.
func currentSettings() (*models.Settings, bool, error) {
	if client, err := Connect(); err == nil {
		if s, err := client.Settings(); err == nil {
			return s, true, nil
		}
	}
	s, err := config.LoadSettings()
	if err != nil {
		return nil, false, err
	}
	return s, false, nil
}

func applySettingsKey(s *models.Settings, key, value string) error {
	switch key {
	case "hotkey":
		s.Hotkey = value
	case "popup-timeout":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("popup-timeout must be a number of seconds")
		}
		s.PopupTimeoutSec = n
	case "language":
		s.LanguageMode = value
	case "theme":
		s.Theme = value
	case "auto-launch":
		return setBool(&s.AutoLaunch, key, value)
	case "notifications":
		return setBool(&s.Notifications, key, value)
	case "telemetry":
		return setBool(&s.Telemetry, key, value)
	default:
		return fmt.Errorf("unknown settings key %q (see 'sberwhisper settings set --help')", key)
	}
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s must be true or false", key)
	}
	*dst = b
	return nil
}
