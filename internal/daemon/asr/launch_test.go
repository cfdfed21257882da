package asr

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAllowScriptFallback(t *testing.T) {
	tests := []struct {
		name     string
		devBuild bool
		env      string
		setEnv   bool
		want     bool
	}{
		{name: "dev build always allows", devBuild: true, want: true},
		{name: "release without env denies", want: false},
		{name: "env 1", env: "1", setEnv: true, want: true},
		{name: "env true", env: "true", setEnv: true, want: true},
		{name: "env TRUE", env: "TRUE", setEnv: true, want: true},
		{name: "env padded", env: "  true  ", setEnv: true, want: true},
		{name: "env 0", env: "0", setEnv: true, want: false},
		{name: "env garbage", env: "yes", setEnv: true, want: false},
		{name: "env empty", env: "", setEnv: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv("SBER_WHISPER_ALLOW_SCRIPT_FALLBACK", tt.env)
			}
			if got := AllowScriptFallback(tt.devBuild); got != tt.want {
				t.Errorf("AllowScriptFallback(%v) = %v, want %v", tt.devBuild, got, tt.want)
			}
		})
	}
}

func TestLaunchPolicyNoBinaryNoFallback(t *testing.T) {
	p := launchPolicy{
		anchors:       []string{t.TempDir()},
		logsDir:       t.TempDir(),
		allowFallback: false,
		log:           discardLogger(),
	}

	_, err := p.start()
	if err == nil {
		t.Fatal("start() error = nil, want tier-1 failure")
	}
	if !strings.HasPrefix(err.Error(), "failed to start bundled ASR sidecar; reinstall app. details: ") {
		t.Errorf("start() error = %q, want reinstall-app prefix", err.Error())
	}
	if !strings.Contains(err.Error(), "not found (checked") {
		t.Errorf("start() error = %q, want embedded discovery detail", err.Error())
	}
}

func TestLaunchPolicyFallbackWithoutScript(t *testing.T) {
	p := launchPolicy{
		anchors:       []string{t.TempDir()},
		logsDir:       t.TempDir(),
		allowFallback: true,
		log:           discardLogger(),
	}

	_, err := p.start()
	if err == nil {
		t.Fatal("start() error = nil, want script discovery failure")
	}
	if !strings.Contains(err.Error(), "python/asr_service.py not found") {
		t.Errorf("start() error = %q, want script not-found", err.Error())
	}
}

func TestInterpreterAttemptsIncludeScript(t *testing.T) {
	attempts := interpreterAttempts("/tmp/asr_service.py")
	if len(attempts) < 2 {
		t.Fatalf("interpreterAttempts() returned %d attempts, want at least 2", len(attempts))
	}
	if attempts[0].bin != "python" || attempts[1].bin != "python3" {
		t.Errorf("interpreter order = %q, %q, want python, python3", attempts[0].bin, attempts[1].bin)
	}
	for _, a := range attempts {
		found := false
		for _, arg := range a.args {
			if arg == "/tmp/asr_service.py" {
				found = true
			}
		}
		if !found {
			t.Errorf("attempt %q does not pass the script path: %v", a.bin, a.args)
		}
	}
}
