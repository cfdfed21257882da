// Package notify shows desktop notifications for dictation outcomes.
package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

const appTitle = "Sber Whisper"

// Notifier shows desktop notifications when the user has them enabled.
// Failures are logged and never propagate; a missing notification daemon
// must not break dictation.
type Notifier struct {
	log     *slog.Logger
	enabled func() bool
}

// New returns a Notifier. enabled is consulted per notification so
// settings changes apply without rewiring.
func New(log *slog.Logger, enabled func() bool) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &Notifier{log: log, enabled: enabled}
}

// TranscriptCopied announces a transcript landing on the clipboard.
func (n *Notifier) TranscriptCopied(text string) {
	n.send("Copied: " + truncate(text, 80))
}

// WorkerError surfaces a recognition failure.
func (n *Notifier) WorkerError(message string) {
	n.send(truncate(message, 200))
}

func (n *Notifier) send(message string) {
	if !n.enabled() {
		return
	}
	if err := beeep.Notify(appTitle, message, ""); err != nil {
		n.log.Debug("notification failed", "error", err)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
