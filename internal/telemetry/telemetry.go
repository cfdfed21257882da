// Package telemetry reports anonymous usage events when the user opts in.
package telemetry

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
)

// APIKey is injected at build time via ldflags. An empty key disables
// telemetry entirely regardless of the user's setting.
var APIKey = ""

const endpoint = "https://eu.i.posthog.com"

// Client batches usage events to the collector. The zero value and a nil
// *Client are both safe no-ops, so call sites never branch on opt-in.
type Client struct {
	log     *slog.Logger
	ph      posthog.Client
	id      string
	enabled func() bool
}

// New returns a Client. enabled is consulted per event so flipping the
// setting takes effect without a restart. appDir stores the anonymous
// install ID. Returns a no-op client when no API key is compiled in.
func New(log *slog.Logger, appDir string, enabled func() bool) *Client {
	if log == nil {
		log = slog.Default()
	}
	if enabled == nil {
		enabled = func() bool { return false }
	}
	if APIKey == "" {
		return &Client{log: log, enabled: enabled}
	}

	ph, err := posthog.NewWithConfig(APIKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		log.Warn("telemetry disabled", "error", err)
		return &Client{log: log, enabled: enabled}
	}
	return &Client{
		log:     log,
		ph:      ph,
		id:      installID(appDir),
		enabled: enabled,
	}
}

// Capture enqueues one event. Dropped silently when telemetry is off.
func (c *Client) Capture(event string, props map[string]any) {
	if c == nil || c.ph == nil || !c.enabled() {
		return
	}
	p := posthog.NewProperties()
	for k, v := range props {
		p.Set(k, v)
	}
	err := c.ph.Enqueue(posthog.Capture{
		DistinctId: c.id,
		Event:      event,
		Properties: p,
	})
	if err != nil {
		c.log.Debug("telemetry enqueue failed", "event", event, "error", err)
	}
}

// Close flushes pending events. Call once at daemon exit.
func (c *Client) Close() {
	if c == nil || c.ph == nil {
		return
	}
	if err := c.ph.Close(); err != nil {
		c.log.Debug("telemetry close failed", "error", err)
	}
}

// installID returns the per-install anonymous identifier, minting and
// persisting one on first use. Identifies the install, never the user.
func installID(appDir string) string {
	path := filepath.Join(appDir, "telemetry_id")
	if raw, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id
		}
	}
	id := uuid.NewString()
	_ = os.MkdirAll(appDir, 0o755)
	_ = os.WriteFile(path, []byte(id+"\n"), 0o600)
	return id
}
