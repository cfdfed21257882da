package asr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sber-whisper/desktop/internal/models"
)

// DisconnectMessage is the synthetic error published when the current
// worker's stdout closes outside of daemon shutdown.
const DisconnectMessage = "ASR sidecar disconnected. It will restart on next action."

// ErrShutdown is returned by worker operations after Shutdown.
var ErrShutdown = errors.New("sidecar supervisor is shut down")

const killTimeout = 5 * time.Second

// Clipboard receives final transcripts.
type Clipboard interface {
	Write(text string) error
}

// Config wires a Supervisor's collaborators.
type Config struct {
	Logger *slog.Logger

	// LogsDir is exported to the worker through SBER_WHISPER_LOG_DIR.
	LogsDir string

	// ResourceDir is an optional extra anchor for worker discovery.
	ResourceDir string

	// AllowScriptFallback permits running the development script when
	// the packaged binary is missing.
	AllowScriptFallback bool

	Clipboard Clipboard

	// Emit forwards worker events to the rest of the daemon. Called from
	// reader goroutines; implementations must not call back into the
	// Supervisor.
	Emit func(Event)
}

// Supervisor owns at most one worker process at a time. The worker is
// started lazily, restarted on demand when it is found dead, and never
// restarted on a timer.
type Supervisor struct {
	log  *slog.Logger
	clip Clipboard
	emit func(Event)

	mu           sync.Mutex
	handle       *Handle
	launch       func() (*Handle, error)
	onDisconnect func()
	onSpawn      func(generation, label string)

	down atomic.Bool
}

// New returns a Supervisor. No worker is started until the first
// EnsureRunning or Dispatch.
func New(cfg Config) *Supervisor {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	emit := cfg.Emit
	if emit == nil {
		emit = func(Event) {}
	}
	s := &Supervisor{
		log:  log,
		clip: cfg.Clipboard,
		emit: emit,
	}
	policy := launchPolicy{
		logsDir:       cfg.LogsDir,
		allowFallback: cfg.AllowScriptFallback,
		log:           log,
	}
	resourceDir := cfg.ResourceDir
	s.launch = func() (*Handle, error) {
		policy.anchors = Anchors(resourceDir)
		return policy.start()
	}
	return s
}

// SetOnDisconnect registers the callback invoked when the current
// worker's output closes unexpectedly, before the disconnect event is
// published. Must be set before the first worker starts.
func (s *Supervisor) SetOnDisconnect(fn func()) {
	s.mu.Lock()
	s.onDisconnect = fn
	s.mu.Unlock()
}

// SetOnSpawn registers a callback invoked after every successful worker
// spawn. Must be set before the first worker starts.
func (s *Supervisor) SetOnSpawn(fn func(generation, label string)) {
	s.mu.Lock()
	s.onSpawn = fn
	s.mu.Unlock()
}

// EnsureRunning checks the worker is alive and spawns a replacement if
// it is not.
func (s *Supervisor) EnsureRunning() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureRunningLocked()
}

func (s *Supervisor) ensureRunningLocked() error {
	if s.down.Load() {
		return ErrShutdown
	}
	if s.handle != nil {
		if s.handle.Alive() {
			return nil
		}
		s.log.Info("sidecar exited", "generation", s.handle.Generation, "status", exitStatus(s.handle.WaitErr()))
	}

	h, err := s.launch()
	if err != nil {
		return err
	}
	s.handle = h
	go s.readStdout(h)
	go s.readStderr(h)
	s.log.Info("started sidecar", "command", h.Label, "generation", h.Generation, "pid", h.PID())
	if s.onSpawn != nil {
		s.onSpawn(h.Generation, h.Label)
	}
	return nil
}

// Dispatch ensures a live worker and writes one command line to it.
// Failures are returned without rolling back any caller state; a write
// to a freshly dead worker fails here and the next call restarts it.
func (s *Supervisor) Dispatch(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureRunningLocked(); err != nil {
		return err
	}
	line, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to encode sidecar command: %w", err)
	}
	return s.handle.writeLine(line)
}

// DispatchOrEmit sends a command and converts a failure into an error
// event so UI surfaces see it without a separate error channel.
func (s *Supervisor) DispatchOrEmit(cmd Command) {
	if err := s.Dispatch(cmd); err != nil {
		s.log.Error("sidecar command failed", "command", cmd.Name, "error", err)
		s.emit(ErrorEvent(err.Error()))
	}
}

// Bootstrap starts the worker and sends the initial handshake. Failures
// are logged and surfaced as error events; the daemon keeps running
// either way and retries on the next user action.
func (s *Supervisor) Bootstrap(languageMode string, popupTimeoutSec int) {
	if err := s.Dispatch(NewCommand(CmdInit)); err != nil {
		s.log.Error("failed to start sidecar at setup", "error", err)
		s.emit(ErrorEvent(err.Error()))
		return
	}
	s.DispatchOrEmit(NewSetConfig(languageMode, popupTimeoutSec))
}

// WorkerRunning reports whether a live worker currently occupies the slot.
func (s *Supervisor) WorkerRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle != nil && s.handle.Alive()
}

// Status snapshots the worker for status surfaces.
func (s *Supervisor) Status() models.WorkerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st models.WorkerStatus
	if s.handle != nil && s.handle.Alive() {
		started := s.handle.startedAt
		st.Running = true
		st.Generation = s.handle.Generation
		st.PID = s.handle.PID()
		st.StartedAt = &started
	}
	return st
}

// RunHealthMonitor periodically pings a running worker so a hung process
// is noticed between recordings. A non-positive interval disables it.
// The monitor never starts a worker on its own.
func (s *Supervisor) RunHealthMonitor(stop <-chan struct{}, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.WorkerRunning() {
				continue
			}
			if err := s.Dispatch(NewCommand(CmdHealthcheck)); err != nil {
				s.log.Warn("sidecar healthcheck failed", "error", err)
			}
		}
	}
}

// Shutdown stops the worker and prevents any further restart. The
// shutdown command is written best-effort before the process is killed.
func (s *Supervisor) Shutdown() {
	s.down.Store(true)
	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.mu.Unlock()
	if h == nil {
		return
	}
	if line, err := json.Marshal(NewCommand(CmdShutdown)); err == nil {
		_ = h.writeLine(line)
	}
	h.kill(killTimeout)
	s.log.Info("sidecar stopped", "generation", h.Generation)
}

func (s *Supervisor) isCurrent(h *Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle == h
}

// workerDisconnected runs once per handle when its stdout closes. Side
// effects apply only while the handle still occupies the slot, so late
// exits of replaced workers stay silent.
func (s *Supervisor) workerDisconnected(h *Handle) {
	s.mu.Lock()
	current := s.handle == h
	cb := s.onDisconnect
	s.mu.Unlock()
	if !current || s.down.Load() {
		return
	}
	s.log.Warn("sidecar disconnected", "generation", h.Generation)
	if cb != nil {
		cb()
	}
	s.emit(ErrorEvent(DisconnectMessage))
}

func (s *Supervisor) copyTranscript(text string) {
	if s.clip == nil {
		return
	}
	if err := s.clip.Write(text); err != nil {
		s.log.Error("clipboard copy failed", "error", err)
		s.emit(ErrorEvent("Clipboard copy failed: " + err.Error()))
		return
	}
	s.log.Info("copied transcript to clipboard")
}

func exitStatus(err error) string {
	if err == nil {
		return "0"
	}
	return err.Error()
}
