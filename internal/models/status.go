package models

import "time"

// Session phases surfaced to the UI. The recording flag covers only the
// press/release span; the phase also tracks the transcription tail between
// stop_and_transcribe and the final_transcript event.
const (
	PhaseIdle         = "idle"
	PhaseRecording    = "recording"
	PhaseTranscribing = "transcribing"
)

// WorkerStatus describes the supervised sidecar process.
type WorkerStatus struct {
	Running    bool       `json:"running"`
	Generation string     `json:"generation,omitempty"`
	PID        int        `json:"pid,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
}

// SessionStatus describes the current dictation session.
type SessionStatus struct {
	Phase          string  `json:"phase"`
	Recording      bool    `json:"recording"`
	LastTranscript string  `json:"last_transcript,omitempty"`
	LastLatencyMS  float64 `json:"last_latency_ms,omitempty"`
	Device         string  `json:"device,omitempty"`
	Model          string  `json:"model,omitempty"`
}

// DaemonStatus is the response body of GET /api/v1/status.
type DaemonStatus struct {
	Version      string        `json:"version"`
	PID          int           `json:"pid"`
	StartedAt    time.Time     `json:"started_at"`
	Worker       WorkerStatus  `json:"worker"`
	Session      SessionStatus `json:"session"`
	Hotkey       string        `json:"hotkey"`
	LanguageMode string        `json:"language_mode"`
}
