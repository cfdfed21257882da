package tui

import "github.com/sber-whisper/desktop/internal/models"

// StatusMsg carries a daemon status snapshot.
type StatusMsg struct {
	Status *models.DaemonStatus
}

// SettingsMsg carries the current settings.
type SettingsMsg struct {
	Settings *models.Settings
}

// StreamEventMsg carries one event from the daemon's SSE stream.
type StreamEventMsg struct {
	Event models.StreamEvent
}

// StreamEndedMsg signals the event stream closed. Err is nil on a clean
// shutdown-side close.
type StreamEndedMsg struct {
	Err error
}

// ActionSentMsg signals a record/cancel/healthcheck request was accepted.
type ActionSentMsg struct{}

// ErrorMsg carries an error to display in the status bar.
type ErrorMsg struct {
	Err error
}

// ClearErrorMsg clears the error display.
type ClearErrorMsg struct{}

// TickMsg is the periodic status poll.
type TickMsg struct{}

// ResubscribeMsg retries the event stream after it broke.
type ResubscribeMsg struct{}

// spinnerTickMsg advances the phase indicator animation.
type spinnerTickMsg struct{}
