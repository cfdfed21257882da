package recording

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/sber-whisper/desktop/internal/daemon/asr"
	"github.com/sber-whisper/desktop/internal/daemon/bus"
	"github.com/sber-whisper/desktop/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeDispatcher struct {
	mu   sync.Mutex
	cmds []asr.Command
	err  error
}

func (d *fakeDispatcher) Dispatch(cmd asr.Command) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.cmds = append(d.cmds, cmd)
	return nil
}

func (d *fakeDispatcher) names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.cmds))
	for i, c := range d.cmds {
		out[i] = c.Name
	}
	return out
}

type fakeNotifier struct {
	mu      sync.Mutex
	copied  []string
	errored []string
}

func (n *fakeNotifier) TranscriptCopied(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.copied = append(n.copied, text)
}

func (n *fakeNotifier) WorkerError(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errored = append(n.errored, message)
}

type ctrlHarness struct {
	ctrl    *Controller
	disp    *fakeDispatcher
	hub     *bus.Hub
	events  <-chan bus.Event
	notif   *fakeNotifier
	emitted []asr.Event
}

func newCtrlHarness(t *testing.T) *ctrlHarness {
	t.Helper()
	h := &ctrlHarness{
		disp:  &fakeDispatcher{},
		hub:   bus.New(16),
		notif: &fakeNotifier{},
	}
	events, cancel := h.hub.Subscribe()
	t.Cleanup(cancel)
	h.events = events
	h.ctrl = New(Config{
		Logger:          discardLogger(),
		Dispatcher:      h.disp,
		Hub:             h.hub,
		Notifier:        h.notif,
		Emit:            func(ev asr.Event) { h.emitted = append(h.emitted, ev) },
		PopupTimeoutSec: func() int { return 7 },
	})
	return h
}

func (h *ctrlHarness) drainEvents() []bus.Event {
	var out []bus.Event
	for {
		select {
		case ev := <-h.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func countType(events []bus.Event, typ string) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func TestHotkeyPressIsEdgeTriggered(t *testing.T) {
	h := newCtrlHarness(t)

	h.ctrl.HotkeyPressed()
	h.ctrl.HotkeyPressed() // key repeat while held
	h.ctrl.HotkeyPressed()

	if got := h.disp.names(); !reflect.DeepEqual(got, []string{"start_recording"}) {
		t.Errorf("dispatched %v, want [start_recording]", got)
	}
	if !h.ctrl.Recording() {
		t.Error("Recording() = false after press")
	}
	events := h.drainEvents()
	if got := countType(events, bus.EventPopupShow); got != 1 {
		t.Errorf("popup events = %d, want 1", got)
	}
	if got := countType(events, bus.EventRecordingState); got != 1 {
		t.Errorf("recording_state events = %d, want 1", got)
	}
}

func TestHotkeyReleaseStopsOnce(t *testing.T) {
	h := newCtrlHarness(t)

	h.ctrl.HotkeyPressed()
	h.ctrl.HotkeyReleased()
	h.ctrl.HotkeyReleased()

	want := []string{"start_recording", "stop_and_transcribe"}
	if got := h.disp.names(); !reflect.DeepEqual(got, want) {
		t.Errorf("dispatched %v, want %v", got, want)
	}
	if h.ctrl.Recording() {
		t.Error("Recording() = true after release")
	}
}

func TestReleaseWithoutPressIsNoop(t *testing.T) {
	h := newCtrlHarness(t)

	h.ctrl.HotkeyReleased()

	if got := h.disp.names(); len(got) != 0 {
		t.Errorf("dispatched %v, want none", got)
	}
	if events := h.drainEvents(); len(events) != 0 {
		t.Errorf("published %d events, want 0", len(events))
	}
}

func TestUIIntentsAreUnconditional(t *testing.T) {
	h := newCtrlHarness(t)

	h.ctrl.HotkeyPressed()
	h.ctrl.StartRecording() // already recording, dispatched anyway

	want := []string{"start_recording", "start_recording"}
	if got := h.disp.names(); !reflect.DeepEqual(got, want) {
		t.Errorf("dispatched %v, want %v", got, want)
	}
	if !h.ctrl.Recording() {
		t.Error("Recording() = false after UI start")
	}

	h.ctrl.StopAndTranscribe()
	h.ctrl.StopAndTranscribe()
	if got := h.disp.names(); len(got) != 4 {
		t.Errorf("dispatched %d commands, want 4 (UI stop repeats)", len(got))
	}
	if h.ctrl.Recording() {
		t.Error("Recording() = true after UI stop")
	}
}

func TestCancelClearsFlagWithoutPopup(t *testing.T) {
	h := newCtrlHarness(t)
	h.ctrl.HotkeyPressed()
	h.drainEvents()

	h.ctrl.CancelCurrent()

	names := h.disp.names()
	if names[len(names)-1] != "cancel_current" {
		t.Errorf("last dispatch = %q, want cancel_current", names[len(names)-1])
	}
	if h.ctrl.Recording() {
		t.Error("Recording() = true after cancel")
	}
	events := h.drainEvents()
	if got := countType(events, bus.EventPopupShow); got != 0 {
		t.Errorf("popup events on cancel = %d, want 0", got)
	}
	if got := countType(events, bus.EventRecordingState); got != 1 {
		t.Errorf("recording_state events = %d, want 1", got)
	}
}

func TestDispatchFailureKeepsFlagAndEmitsError(t *testing.T) {
	h := newCtrlHarness(t)
	h.disp.err = errors.New("failed to write sidecar command: broken pipe")

	h.ctrl.HotkeyPressed()

	if !h.ctrl.Recording() {
		t.Error("Recording() = false, want flag kept despite dispatch failure")
	}
	if len(h.emitted) != 1 {
		t.Fatalf("emitted %d events, want 1", len(h.emitted))
	}
	ev := h.emitted[0]
	if ev.Name() != asr.EvError {
		t.Errorf("emitted event = %q, want error", ev.Name())
	}
	if !strings.Contains(ev.Message(), "broken pipe") {
		t.Errorf("message = %q, want dispatch failure detail", ev.Message())
	}
}

func TestPopupCarriesTimeout(t *testing.T) {
	h := newCtrlHarness(t)
	h.ctrl.HotkeyPressed()

	var payload struct {
		TimeoutSec int `json:"timeout_sec"`
	}
	for _, ev := range h.drainEvents() {
		if ev.Type != bus.EventPopupShow {
			continue
		}
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			t.Fatalf("unmarshal popup payload: %v", err)
		}
		if payload.TimeoutSec != 7 {
			t.Errorf("timeout_sec = %d, want 7", payload.TimeoutSec)
		}
		return
	}
	t.Fatal("no popup_show event published")
}

func TestPhaseFollowsWorkerEvents(t *testing.T) {
	h := newCtrlHarness(t)

	steps := []struct {
		ev        asr.Event
		wantPhase string
	}{
		{asr.Event{"event": "recording_started"}, models.PhaseRecording},
		{asr.Event{"event": "recording_stopped"}, models.PhaseTranscribing},
		{asr.Event{"event": "final_transcript", "text": "привет"}, models.PhaseIdle},
		{asr.Event{"event": "recording_started"}, models.PhaseRecording},
		{asr.Event{"event": "job_cancelled"}, models.PhaseIdle},
	}
	for i, step := range steps {
		h.ctrl.ObserveEvent(step.ev)
		if got := h.ctrl.Phase(); got != step.wantPhase {
			t.Errorf("step %d: phase = %q, want %q", i, got, step.wantPhase)
		}
	}

	st := h.ctrl.Status()
	if st.LastTranscript != "привет" {
		t.Errorf("LastTranscript = %q, want %q", st.LastTranscript, "привет")
	}
	if !reflect.DeepEqual(h.notif.copied, []string{"привет"}) {
		t.Errorf("notified copies = %v, want [привет]", h.notif.copied)
	}
}

func TestErrorEventNotifiesAndIdles(t *testing.T) {
	h := newCtrlHarness(t)
	h.ctrl.ObserveEvent(asr.Event{"event": "recording_started"})

	h.ctrl.ObserveEvent(asr.Event{"event": "error", "message": "ASR failed"})

	if got := h.ctrl.Phase(); got != models.PhaseIdle {
		t.Errorf("phase = %q, want idle", got)
	}
	if !reflect.DeepEqual(h.notif.errored, []string{"ASR failed"}) {
		t.Errorf("notified errors = %v, want [ASR failed]", h.notif.errored)
	}
}

func TestMetricsRetained(t *testing.T) {
	h := newCtrlHarness(t)

	h.ctrl.ObserveEvent(asr.Event{
		"event":      "metrics",
		"latency_ms": 432.5,
		"device":     "cuda",
		"model":      "large-v3",
	})

	st := h.ctrl.Status()
	if st.LastLatencyMS != 432.5 {
		t.Errorf("LastLatencyMS = %v, want 432.5", st.LastLatencyMS)
	}
	if st.Device != "cuda" || st.Model != "large-v3" {
		t.Errorf("device/model = %q/%q, want cuda/large-v3", st.Device, st.Model)
	}
}

func TestWorkerDisconnectResets(t *testing.T) {
	h := newCtrlHarness(t)
	h.ctrl.HotkeyPressed()
	h.ctrl.ObserveEvent(asr.Event{"event": "recording_started"})
	h.drainEvents()

	h.ctrl.HandleWorkerDisconnect()

	if h.ctrl.Recording() {
		t.Error("Recording() = true after worker disconnect")
	}
	if got := h.ctrl.Phase(); got != models.PhaseIdle {
		t.Errorf("phase = %q, want idle", got)
	}
	events := h.drainEvents()
	if got := countType(events, bus.EventRecordingState); got == 0 {
		t.Error("no recording_state published on disconnect")
	}
}
