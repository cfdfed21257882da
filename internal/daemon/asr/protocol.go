// Package asr supervises the out-of-process speech recognition worker
// and speaks its newline-delimited JSON protocol.
package asr

// Command names understood by the worker.
const (
	CmdInit              = "init"
	CmdStartRecording    = "start_recording"
	CmdStopAndTranscribe = "stop_and_transcribe"
	CmdCancelCurrent     = "cancel_current"
	CmdSetConfig         = "set_config"
	CmdHealthcheck       = "healthcheck"
	CmdShutdown          = "shutdown"
)

// Event names emitted by the worker.
const (
	EvReady             = "ready"
	EvRecordingStarted  = "recording_started"
	EvRecordingStopped  = "recording_stopped"
	EvPartialTranscript = "partial_transcript"
	EvFinalTranscript   = "final_transcript"
	EvJobCancelled      = "job_cancelled"
	EvMetrics           = "metrics"
	EvError             = "error"
)

// Command is one request written to the worker's stdin as a single JSON line.
type Command struct {
	Name   string         `json:"command"`
	Config *CommandConfig `json:"config,omitempty"`
}

// CommandConfig carries the payload of a set_config command.
type CommandConfig struct {
	LanguageMode    string `json:"language_mode"`
	PopupTimeoutSec int    `json:"popup_timeout_sec"`
}

// NewCommand returns a bare command with no payload.
func NewCommand(name string) Command {
	return Command{Name: name}
}

// NewSetConfig returns a set_config command carrying the runtime options
// the worker honors without a restart.
func NewSetConfig(languageMode string, popupTimeoutSec int) Command {
	return Command{
		Name: CmdSetConfig,
		Config: &CommandConfig{
			LanguageMode:    languageMode,
			PopupTimeoutSec: popupTimeoutSec,
		},
	}
}

// Event is one parsed object from the worker's stdout. Payload keys vary
// by event name; values are kept verbatim so events can be forwarded to
// subscribers unmodified.
type Event map[string]any

// Name returns the event discriminator, or "" when absent.
func (e Event) Name() string {
	s, _ := e["event"].(string)
	return s
}

// Text returns the transcript payload of partial/final transcript events.
func (e Event) Text() (string, bool) {
	s, ok := e["text"].(string)
	return s, ok
}

// Message returns the human-readable payload of error events.
func (e Event) Message() string {
	s, _ := e["message"].(string)
	return s
}

// Str returns a string payload field by key.
func (e Event) Str(key string) (string, bool) {
	s, ok := e[key].(string)
	return s, ok
}

// Num returns a numeric payload field by key.
func (e Event) Num(key string) (float64, bool) {
	f, ok := e[key].(float64)
	return f, ok
}

// ErrorEvent builds a worker-shaped error event so callers never have to
// distinguish synthetic errors from ones the worker reported itself.
func ErrorEvent(message string) Event {
	return Event{"event": EvError, "message": message}
}
