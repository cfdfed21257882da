package asr

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

// launchPolicy starts one worker process using the two-tier strategy:
// the packaged binary first, then the development script through a list
// of Python interpreters when the fallback is allowed.
type launchPolicy struct {
	anchors       []string
	logsDir       string
	allowFallback bool
	log           *slog.Logger
}

func (p launchPolicy) start() (*Handle, error) {
	var details []string

	binPath, err := FindBundledBinary(p.anchors)
	if err == nil {
		h, spawnErr := startWorker(binPath, nil, binPath, p.logsDir)
		if spawnErr == nil {
			return h, nil
		}
		details = append(details, spawnErr.Error())
	} else {
		p.log.Warn(err.Error())
		details = append(details, err.Error())
	}

	if !p.allowFallback {
		return nil, fmt.Errorf("failed to start bundled ASR sidecar; reinstall app. details: %s",
			strings.Join(details, " | "))
	}

	p.log.Info("sidecar script fallback enabled; attempting to run python/asr_service.py")
	script, err := FindWorkerScript(p.anchors)
	if err != nil {
		return nil, err
	}

	var lastErr string
	for _, attempt := range interpreterAttempts(script) {
		h, spawnErr := startWorker(attempt.bin, attempt.args, attempt.bin, p.logsDir)
		if spawnErr == nil {
			return h, nil
		}
		lastErr = spawnErr.Error()
		details = append(details, lastErr)
	}

	return nil, fmt.Errorf("failed to start sidecar process (%s); details: %s",
		lastErr, strings.Join(details, " | "))
}

type interpreterAttempt struct {
	bin  string
	args []string
}

func interpreterAttempts(script string) []interpreterAttempt {
	attempts := []interpreterAttempt{
		{bin: "python", args: []string{script}},
		{bin: "python3", args: []string{script}},
	}
	if runtime.GOOS == "windows" {
		attempts = append(attempts, interpreterAttempt{bin: "py", args: []string{"-3", script}})
	}
	return attempts
}

// AllowScriptFallback reports whether the development script may be used
// when the packaged binary is missing. Development builds always allow it;
// release builds require an explicit opt-in through the environment.
func AllowScriptFallback(devBuild bool) bool {
	if devBuild {
		return true
	}
	raw, ok := os.LookupEnv("SBER_WHISPER_ALLOW_SCRIPT_FALLBACK")
	if !ok {
		return false
	}
	value := strings.TrimSpace(raw)
	return value == "1" || strings.EqualFold(value, "true")
}
