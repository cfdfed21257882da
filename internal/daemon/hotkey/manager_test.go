package hotkey

import (
	"io"
	"log/slog"
	"testing"

	hook "github.com/robotn/gohook"
)

type recordingHandler struct {
	presses  int
	releases int
}

func (h *recordingHandler) OnPress()   { h.presses++ }
func (h *recordingHandler) OnRelease() { h.releases++ }

func newTestManager(t *testing.T, chord string) (*Manager, *recordingHandler) {
	t.Helper()
	handler := &recordingHandler{}
	m := New(slog.New(slog.NewTextHandler(io.Discard, nil)), handler)
	if err := m.Rebind(chord); err != nil {
		t.Fatalf("Rebind(%q) error = %v", chord, err)
	}
	return m, handler
}

func keyDown(code uint16) hook.Event { return hook.Event{Kind: hook.KeyDown, Keycode: code} }
func keyHold(code uint16) hook.Event { return hook.Event{Kind: hook.KeyHold, Keycode: code} }
func keyUp(code uint16) hook.Event   { return hook.Event{Kind: hook.KeyUp, Keycode: code} }

func TestChordPressAndRelease(t *testing.T) {
	m, handler := newTestManager(t, "ctrl+g")
	down := map[uint16]bool{}
	ctrl, g := hook.Keycode["ctrl"], hook.Keycode["g"]

	m.handleEvent(keyDown(ctrl), down)
	m.handleEvent(keyDown(g), down)
	m.handleEvent(keyUp(g), down)
	m.handleEvent(keyUp(ctrl), down)

	if handler.presses != 1 {
		t.Errorf("presses = %d, want 1", handler.presses)
	}
	if handler.releases != 1 {
		t.Errorf("releases = %d, want 1", handler.releases)
	}
}

func TestKeyHoldRepeatsPress(t *testing.T) {
	// Key-repeat reaches the handler; the recording state machine owns
	// the edge debounce.
	m, handler := newTestManager(t, "ctrl+g")
	down := map[uint16]bool{}
	ctrl, g := hook.Keycode["ctrl"], hook.Keycode["g"]

	m.handleEvent(keyDown(ctrl), down)
	m.handleEvent(keyDown(g), down)
	m.handleEvent(keyHold(g), down)
	m.handleEvent(keyHold(g), down)

	if handler.presses != 3 {
		t.Errorf("presses = %d, want 3", handler.presses)
	}
}

func TestMainKeyWithoutModifierDoesNotFire(t *testing.T) {
	m, handler := newTestManager(t, "ctrl+g")
	down := map[uint16]bool{}
	g := hook.Keycode["g"]

	m.handleEvent(keyDown(g), down)

	if handler.presses != 0 {
		t.Errorf("presses = %d, want 0", handler.presses)
	}
	// The stray main-key release still reports; the state machine treats
	// a release without a recording as a no-op.
	m.handleEvent(keyUp(g), down)
	if handler.releases != 1 {
		t.Errorf("releases = %d, want 1", handler.releases)
	}
}

func TestModifierReleasedBeforeMainKey(t *testing.T) {
	m, handler := newTestManager(t, "ctrl+g")
	down := map[uint16]bool{}
	ctrl, g := hook.Keycode["ctrl"], hook.Keycode["g"]

	m.handleEvent(keyDown(ctrl), down)
	m.handleEvent(keyDown(g), down)
	m.handleEvent(keyUp(ctrl), down)
	m.handleEvent(keyUp(g), down)

	if handler.presses != 1 || handler.releases != 1 {
		t.Errorf("presses/releases = %d/%d, want 1/1", handler.presses, handler.releases)
	}
}

func TestOtherKeysIgnored(t *testing.T) {
	m, handler := newTestManager(t, "ctrl+g")
	down := map[uint16]bool{}
	ctrl, x := hook.Keycode["ctrl"], hook.Keycode["x"]

	m.handleEvent(keyDown(ctrl), down)
	m.handleEvent(keyDown(x), down)
	m.handleEvent(keyUp(x), down)

	if handler.presses != 0 || handler.releases != 0 {
		t.Errorf("presses/releases = %d/%d, want 0/0", handler.presses, handler.releases)
	}
}

func TestRebindSwapsChord(t *testing.T) {
	m, handler := newTestManager(t, "ctrl+g")
	down := map[uint16]bool{}
	ctrl, g, r := hook.Keycode["ctrl"], hook.Keycode["g"], hook.Keycode["r"]

	if err := m.Rebind("ctrl+r"); err != nil {
		t.Fatalf("Rebind() error = %v", err)
	}

	m.handleEvent(keyDown(ctrl), down)
	m.handleEvent(keyDown(g), down)
	if handler.presses != 0 {
		t.Errorf("old chord fired after rebind: presses = %d", handler.presses)
	}
	m.handleEvent(keyDown(r), down)
	if handler.presses != 1 {
		t.Errorf("new chord did not fire: presses = %d", handler.presses)
	}
}

func TestRebindRejectsBadChord(t *testing.T) {
	m, _ := newTestManager(t, "ctrl+g")
	if err := m.Rebind("ctrl+bogus"); err == nil {
		t.Fatal("Rebind(ctrl+bogus) error = nil, want error")
	}
	// The previous chord stays active after a failed rebind.
	down := map[uint16]bool{}
	handler := m.handler.(*recordingHandler)
	m.handleEvent(keyDown(hook.Keycode["ctrl"]), down)
	m.handleEvent(keyDown(hook.Keycode["g"]), down)
	if handler.presses != 1 {
		t.Errorf("presses = %d, want 1 (old chord kept)", handler.presses)
	}
}
