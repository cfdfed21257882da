package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sber-whisper/desktop/internal/buildinfo"
	"github.com/sber-whisper/desktop/internal/config"
	"github.com/sber-whisper/desktop/internal/daemon/asr"
	"github.com/sber-whisper/desktop/internal/daemon/clip"
	"github.com/sber-whisper/desktop/internal/daemon/hotkey"
)

const (
	checkPass = "pass"
	checkWarn = "warn"
	checkFail = "fail"
)

// checkResult is the outcome of one doctor probe.
type checkResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

var (
	doctorJSON      bool
	doctorResources string
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the local installation",
	Long: `Check the local installation: config directory, settings file, hotkey,
daemon state, sidecar discovery, clipboard backend and log directory.

Exits non-zero when any check fails.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output results as JSON")
	doctorCmd.Flags().StringVar(&doctorResources, "resources", "", "extra directory to search for the sidecar")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	results := []checkResult{
		checkConfigDir(),
		checkSettings(),
		checkHotkey(),
		checkDaemon(),
		checkSidecar(),
		checkInterpreter(),
		checkClipboard(),
		checkLogsDir(),
	}

	if doctorJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Printf("%s %s\n\n", styleBrand.Render("Sber Whisper"), styleHint.Render("doctor"))
		for _, r := range results {
			fmt.Printf("  %s %-12s %s\n", marker(r.Status), r.Name, styleHint.Render(r.Detail))
		}
		fmt.Println()
	}

	failed := 0
	for _, r := range results {
		if r.Status == checkFail {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d problem(s) found", failed)
	}
	if !doctorJSON {
		fmt.Println(styleSuccess.Render("Everything looks good."))
	}
	return nil
}

func marker(status string) string {
	switch status {
	case checkPass:
		return styleSuccess.Render("✓")
	case checkWarn:
		return styleWarning.Render("!")
	default:
		return styleError.Render("✗")
	}
}

func checkConfigDir() checkResult {
	dir, err := config.AppDir()
	if err != nil {
		return checkResult{"config dir", checkFail, err.Error()}
	}
	if !config.FileExists(dir) {
		return checkResult{"config dir", checkWarn, dir + " (created on first daemon start)"}
	}
	return checkResult{"config dir", checkPass, dir}
}

func checkSettings() checkResult {
	path, err := config.SettingsFile()
	if err != nil {
		return checkResult{"settings", checkFail, err.Error()}
	}
	s, err := config.LoadSettings()
	if err != nil {
		return checkResult{"settings", checkFail, err.Error()}
	}
	if err := s.Validate(); err != nil {
		return checkResult{"settings", checkFail, err.Error()}
	}
	if !config.FileExists(path) {
		return checkResult{"settings", checkWarn, "no settings file yet, using defaults"}
	}
	return checkResult{"settings", checkPass, fmt.Sprintf("hotkey %s, language %s", s.Hotkey, s.LanguageMode)}
}

func checkHotkey() checkResult {
	s, err := config.LoadSettings()
	if err != nil {
		return checkResult{"hotkey", checkFail, err.Error()}
	}
	if _, err := hotkey.ParseChord(s.Hotkey); err != nil {
		return checkResult{"hotkey", checkFail, fmt.Sprintf("%q: %v", s.Hotkey, err)}
	}
	return checkResult{"hotkey", checkPass, s.Hotkey}
}

func checkDaemon() checkResult {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return checkResult{"daemon", checkFail, err.Error()}
	}
	if !running {
		return checkResult{"daemon", checkWarn, "not running (start with 'sberwhisper daemon start')"}
	}

	client, err := Connect()
	if err != nil {
		return checkResult{"daemon", checkFail,
			fmt.Sprintf("pid %d alive but API on port %d not responding", info.PID, info.Port)}
	}
	st, err := client.Status()
	if err != nil {
		return checkResult{"daemon", checkFail, err.Error()}
	}
	return checkResult{"daemon", checkPass, fmt.Sprintf("pid %d, version %s", st.PID, st.Version)}
}

// checkSidecar mirrors the daemon's launch policy: packaged binary first,
// python script only for dev builds or with the explicit override.
func checkSidecar() checkResult {
	anchors := asr.Anchors(doctorResources)

	if path, err := asr.FindBundledBinary(anchors); err == nil {
		return checkResult{"sidecar", checkPass, path}
	}

	script, scriptErr := asr.FindWorkerScript(anchors)
	allowed := asr.AllowScriptFallback(buildinfo.IsDev())
	switch {
	case scriptErr == nil && allowed:
		return checkResult{"sidecar", checkWarn, "no packaged binary, will run script " + script}
	case scriptErr == nil:
		return checkResult{"sidecar", checkFail,
			"no packaged binary; script found but fallback is disabled in release builds"}
	default:
		return checkResult{"sidecar", checkFail, "neither packaged binary nor worker script found"}
	}
}

// checkInterpreter only matters when the script fallback would be used.
func checkInterpreter() checkResult {
	if _, err := asr.FindBundledBinary(asr.Anchors(doctorResources)); err == nil {
		return checkResult{"python", checkPass, "not needed (packaged sidecar found)"}
	}

	names := []string{"python", "python3"}
	if runtime.GOOS == "windows" {
		names = append(names, "py")
	}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return checkResult{"python", checkPass, path}
		}
	}
	return checkResult{"python", checkWarn, "no python interpreter on PATH"}
}

func checkClipboard() checkResult {
	if clip.Available() {
		return checkResult{"clipboard", checkPass, "backend available"}
	}
	detail := "no clipboard backend"
	if runtime.GOOS == "linux" {
		detail += " (install xclip or xsel)"
	}
	return checkResult{"clipboard", checkWarn, detail + "; transcripts will not be copied"}
}

func checkLogsDir() checkResult {
	dir, err := config.LogsDir()
	if err != nil {
		return checkResult{"logs dir", checkFail, err.Error()}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return checkResult{"logs dir", checkFail, err.Error()}
	}
	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return checkResult{"logs dir", checkFail, "not writable: " + err.Error()}
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return checkResult{"logs dir", checkPass, dir}
}
