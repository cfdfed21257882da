package hotkey

import (
	"fmt"
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// EventHandler receives hotkey edges.
type EventHandler interface {
	OnPress()
	OnRelease()
}

// Manager installs the OS keyboard hook and matches the configured chord
// against the raw event stream.
//
// Key-repeat while the chord is held reaches OnPress repeatedly; the
// press edge is debounced by the recording state machine, not here.
// OnRelease fires on the main key going up regardless of modifier state,
// so lifting the modifier a moment early still ends the recording.
type Manager struct {
	log     *slog.Logger
	handler EventHandler

	mu    sync.Mutex
	chord Chord

	done     chan struct{}
	stopOnce sync.Once
}

// New returns a Manager that reports edges to handler.
func New(log *slog.Logger, handler EventHandler) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{log: log, handler: handler}
}

// Start parses the chord, installs the OS hook, and runs the dispatch
// loop until Stop.
func (m *Manager) Start(raw string) error {
	parsed, err := ParseChord(raw)
	if err != nil {
		return fmt.Errorf("failed to register hotkey '%s': %w", raw, err)
	}
	m.mu.Lock()
	m.chord = parsed
	m.mu.Unlock()

	events := hook.Start()
	m.done = make(chan struct{})
	go m.loop(events)
	m.log.Info("hotkey registered", "hotkey", parsed.String())
	return nil
}

// Rebind swaps the active chord without reinstalling the OS hook.
func (m *Manager) Rebind(raw string) error {
	parsed, err := ParseChord(raw)
	if err != nil {
		return fmt.Errorf("failed to register hotkey '%s': %w", raw, err)
	}
	m.mu.Lock()
	m.chord = parsed
	m.mu.Unlock()
	m.log.Info("hotkey rebound", "hotkey", parsed.String())
	return nil
}

// Stop removes the OS hook and waits for the dispatch loop to drain.
func (m *Manager) Stop() {
	if m.done == nil {
		return
	}
	m.stopOnce.Do(func() {
		hook.End()
		<-m.done
	})
}

func (m *Manager) loop(events <-chan hook.Event) {
	defer close(m.done)
	down := make(map[uint16]bool)
	for ev := range events {
		m.handleEvent(ev, down)
	}
}

// handleEvent advances modifier state and fires edges. Split from the
// loop so chord matching is testable without installing an OS hook.
func (m *Manager) handleEvent(ev hook.Event, down map[uint16]bool) {
	switch ev.Kind {
	case hook.KeyDown, hook.KeyHold:
		down[ev.Keycode] = true
		m.mu.Lock()
		chord := m.chord
		m.mu.Unlock()
		if ev.Keycode == chord.code && chord.modsSatisfied(down) {
			m.handler.OnPress()
		}
	case hook.KeyUp:
		delete(down, ev.Keycode)
		m.mu.Lock()
		code := m.chord.code
		m.mu.Unlock()
		if ev.Keycode == code {
			m.handler.OnRelease()
		}
	}
}
