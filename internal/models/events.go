package models

import "encoding/json"

// StreamEvent is one decoded frame from the daemon's /events SSE stream.
// The Data payload shape depends on Type; it is carried verbatim so
// consumers can pick out the fields they care about.
type StreamEvent struct {
	ID   int64           `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}
