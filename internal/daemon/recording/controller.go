// Package recording owns the push-to-talk state machine and the session
// phase reported to status surfaces.
package recording

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sber-whisper/desktop/internal/daemon/asr"
	"github.com/sber-whisper/desktop/internal/daemon/bus"
	"github.com/sber-whisper/desktop/internal/models"
)

// Dispatcher sends commands to the recognition worker.
type Dispatcher interface {
	Dispatch(asr.Command) error
}

// Notifier announces dictation outcomes on the desktop.
type Notifier interface {
	TranscriptCopied(text string)
	WorkerError(message string)
}

// Config wires a Controller's collaborators.
type Config struct {
	Logger     *slog.Logger
	Dispatcher Dispatcher
	Hub        *bus.Hub
	Notifier   Notifier

	// Emit routes synthetic error events the same way worker events
	// travel, so UI surfaces never see two error shapes.
	Emit func(asr.Event)

	// PopupTimeoutSec reads the live setting for popup_show payloads.
	PopupTimeoutSec func() int
}

// Controller turns hotkey edges and UI intents into worker commands and
// tracks the session phase the worker reports back.
//
// The recording flag flips exactly once per hotkey edge; key-repeat
// while held is absorbed by the compare-and-swap. UI intents store the
// flag unconditionally so a wedged flag can always be forced back.
type Controller struct {
	log          *slog.Logger
	dispatcher   Dispatcher
	hub          *bus.Hub
	notifier     Notifier
	emit         func(asr.Event)
	popupTimeout func() int

	recording atomic.Bool

	mu             sync.Mutex
	phase          string
	lastTranscript string
	lastLatencyMS  float64
	device         string
	model          string
}

type popupEvent struct {
	TimeoutSec int `json:"timeout_sec"`
}

type stateEvent struct {
	Phase     string `json:"phase"`
	Recording bool   `json:"recording"`
}

// New returns an idle Controller.
func New(cfg Config) *Controller {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	emit := cfg.Emit
	if emit == nil {
		emit = func(asr.Event) {}
	}
	timeout := cfg.PopupTimeoutSec
	if timeout == nil {
		timeout = func() int { return 10 }
	}
	return &Controller{
		log:          log,
		dispatcher:   cfg.Dispatcher,
		hub:          cfg.Hub,
		notifier:     cfg.Notifier,
		emit:         emit,
		popupTimeout: timeout,
		phase:        models.PhaseIdle,
	}
}

// HotkeyPressed starts a recording on the press edge.
func (c *Controller) HotkeyPressed() {
	if !c.recording.CompareAndSwap(false, true) {
		return
	}
	c.showPopup()
	c.publishState()
	c.dispatchOrEmit(asr.NewCommand(asr.CmdStartRecording))
}

// HotkeyReleased stops the recording and requests transcription.
func (c *Controller) HotkeyReleased() {
	if !c.recording.CompareAndSwap(true, false) {
		return
	}
	c.showPopup()
	c.publishState()
	c.dispatchOrEmit(asr.NewCommand(asr.CmdStopAndTranscribe))
}

// StartRecording is the unconditional UI intent.
func (c *Controller) StartRecording() {
	c.recording.Store(true)
	c.showPopup()
	c.publishState()
	c.dispatchOrEmit(asr.NewCommand(asr.CmdStartRecording))
}

// StopAndTranscribe is the unconditional UI intent.
func (c *Controller) StopAndTranscribe() {
	c.recording.Store(false)
	c.showPopup()
	c.publishState()
	c.dispatchOrEmit(asr.NewCommand(asr.CmdStopAndTranscribe))
}

// CancelCurrent force-clears the flag and drops any in-flight job.
// No popup is shown for a cancel.
func (c *Controller) CancelCurrent() {
	c.recording.Store(false)
	c.publishState()
	c.dispatchOrEmit(asr.NewCommand(asr.CmdCancelCurrent))
}

// HandleWorkerDisconnect resets the machine when the worker goes away,
// so the next press starts clean against the replacement worker.
func (c *Controller) HandleWorkerDisconnect() {
	c.recording.Store(false)
	c.setPhase(models.PhaseIdle)
	c.publishState()
}

// ObserveEvent tracks session phase and retained transcript/metrics from
// the worker event stream. Called for every event, synthetic or not.
func (c *Controller) ObserveEvent(ev asr.Event) {
	switch ev.Name() {
	case asr.EvRecordingStarted:
		c.setPhase(models.PhaseRecording)
	case asr.EvRecordingStopped:
		c.setPhase(models.PhaseTranscribing)
	case asr.EvFinalTranscript:
		text, _ := ev.Text()
		c.mu.Lock()
		c.lastTranscript = text
		c.mu.Unlock()
		c.setPhase(models.PhaseIdle)
		if c.notifier != nil {
			c.notifier.TranscriptCopied(text)
		}
	case asr.EvJobCancelled:
		c.setPhase(models.PhaseIdle)
	case asr.EvError:
		c.setPhase(models.PhaseIdle)
		if c.notifier != nil {
			c.notifier.WorkerError(ev.Message())
		}
	case asr.EvMetrics, asr.EvReady:
		c.mu.Lock()
		if v, ok := ev.Num("latency_ms"); ok {
			c.lastLatencyMS = v
		}
		if s, ok := ev.Str("device"); ok {
			c.device = s
		}
		if s, ok := ev.Str("model"); ok {
			c.model = s
		}
		c.mu.Unlock()
	}
}

// Recording reports the push-to-talk flag.
func (c *Controller) Recording() bool {
	return c.recording.Load()
}

// Phase reports the current session phase.
func (c *Controller) Phase() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Status snapshots the session for status surfaces.
func (c *Controller) Status() models.SessionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.SessionStatus{
		Phase:          c.phase,
		Recording:      c.recording.Load(),
		LastTranscript: c.lastTranscript,
		LastLatencyMS:  c.lastLatencyMS,
		Device:         c.device,
		Model:          c.model,
	}
}

func (c *Controller) dispatchOrEmit(cmd asr.Command) {
	if err := c.dispatcher.Dispatch(cmd); err != nil {
		c.log.Error("sidecar command failed", "command", cmd.Name, "error", err)
		c.emit(asr.ErrorEvent(err.Error()))
	}
}

func (c *Controller) setPhase(phase string) {
	c.mu.Lock()
	changed := c.phase != phase
	c.phase = phase
	c.mu.Unlock()
	if changed {
		c.publishState()
	}
}

func (c *Controller) showPopup() {
	if c.hub == nil {
		return
	}
	c.hub.Publish(bus.EventPopupShow, popupEvent{TimeoutSec: c.popupTimeout()})
}

func (c *Controller) publishState() {
	if c.hub == nil {
		return
	}
	c.hub.Publish(bus.EventRecordingState, stateEvent{
		Phase:     c.Phase(),
		Recording: c.recording.Load(),
	})
}
