package tui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/x/ansi"

	"github.com/sber-whisper/desktop/internal/daemon/asr"
	"github.com/sber-whisper/desktop/internal/daemon/bus"
	"github.com/sber-whisper/desktop/internal/models"
)

// maxFeedLines bounds memory for long-running watch sessions.
const maxFeedLines = 500

// Feed renders the scrolling event list. It follows the tail until the
// user scrolls up, and resumes following on G/end.
type Feed struct {
	viewport viewport.Model
	lines    []string
	follow   bool
	width    int
}

// NewFeed creates an empty feed that follows the tail.
func NewFeed() *Feed {
	vp := viewport.New(80, 24)
	return &Feed{
		viewport: vp,
		follow:   true,
	}
}

// SetSize updates dimensions and re-wraps the viewport.
func (f *Feed) SetSize(width, height int) {
	f.width = width
	f.viewport.Width = width
	f.viewport.Height = height
	f.refresh()
}

// Append formats one stream event into the feed. Unknown event types are
// shown raw so nothing silently disappears.
func (f *Feed) Append(ev models.StreamEvent) {
	line := f.formatEvent(ev)
	if line == "" {
		return
	}

	stamp := feedTimeStyle.Render(time.Now().Format("15:04:05"))
	f.lines = append(f.lines, stamp+" "+line)
	if len(f.lines) > maxFeedLines {
		f.lines = f.lines[len(f.lines)-maxFeedLines:]
	}
	f.refresh()
}

// AppendNote adds a feed-local informational line (stream state changes).
func (f *Feed) AppendNote(text string) {
	stamp := feedTimeStyle.Render(time.Now().Format("15:04:05"))
	f.lines = append(f.lines, stamp+" "+feedInfoStyle.Render(text))
	if len(f.lines) > maxFeedLines {
		f.lines = f.lines[len(f.lines)-maxFeedLines:]
	}
	f.refresh()
}

// Clear empties the feed.
func (f *Feed) Clear() {
	f.lines = nil
	f.follow = true
	f.refresh()
}

func (f *Feed) formatEvent(ev models.StreamEvent) string {
	switch ev.Type {
	case bus.EventASR:
		return f.formatASR(ev.Data)

	case bus.EventRecordingState:
		var state struct {
			Phase     string `json:"phase"`
			Recording bool   `json:"recording"`
		}
		if err := json.Unmarshal(ev.Data, &state); err != nil {
			return feedStateStyle.Render("session state changed")
		}
		return feedStateStyle.Render("session → " + state.Phase)

	case bus.EventSettingsChanged:
		var s models.Settings
		if err := json.Unmarshal(ev.Data, &s); err != nil {
			return feedInfoStyle.Render("settings changed")
		}
		return feedInfoStyle.Render(fmt.Sprintf("settings changed (hotkey %s, language %s)", s.Hotkey, s.LanguageMode))

	case bus.EventPopupShow:
		// Popup cues are daemon UI plumbing, not worth a feed line.
		return ""

	default:
		return feedInfoStyle.Render(ev.Type + " " + compact(string(ev.Data)))
	}
}

func (f *Feed) formatASR(data json.RawMessage) string {
	var ev asr.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return feedErrorStyle.Render("unreadable sidecar event")
	}

	switch ev.Name() {
	case asr.EvReady:
		detail := ""
		if model, ok := ev.Str("model"); ok {
			detail = " (" + model
			if device, ok := ev.Str("device"); ok {
				detail += " on " + device
			}
			detail += ")"
		}
		return feedStateStyle.Render("sidecar ready" + detail)

	case asr.EvRecordingStarted:
		return badgeRecordingStyle.Render("● recording")

	case asr.EvRecordingStopped:
		return badgeTranscribingStyle.Render("◌ transcribing")

	case asr.EvPartialTranscript:
		text, _ := ev.Text()
		return feedPartialStyle.Render("… " + sanitize(text))

	case asr.EvFinalTranscript:
		text, _ := ev.Text()
		return feedTranscriptStyle.Render("» " + sanitize(text))

	case asr.EvJobCancelled:
		return feedInfoStyle.Render("job cancelled")

	case asr.EvMetrics:
		var parts []string
		if v, ok := ev.Num("latency_ms"); ok {
			parts = append(parts, fmt.Sprintf("latency %.0fms", v))
		}
		if s, ok := ev.Str("model"); ok {
			parts = append(parts, "model "+s)
		}
		if s, ok := ev.Str("device"); ok {
			parts = append(parts, "device "+s)
		}
		if len(parts) == 0 {
			return ""
		}
		return feedMetricStyle.Render(strings.Join(parts, " · "))

	case asr.EvError:
		return feedErrorStyle.Render("✗ " + ev.Message())

	default:
		return feedInfoStyle.Render(ev.Name())
	}
}

// ScrollUp stops tail-following and moves up.
func (f *Feed) ScrollUp(n int) {
	f.follow = false
	f.viewport.LineUp(n)
}

// ScrollDown moves down; reaching the bottom resumes following.
func (f *Feed) ScrollDown(n int) {
	f.viewport.LineDown(n)
	if f.viewport.AtBottom() {
		f.follow = true
	}
}

// PageUp scrolls half a page up.
func (f *Feed) PageUp() {
	f.follow = false
	f.viewport.HalfViewUp()
}

// PageDown scrolls half a page down.
func (f *Feed) PageDown() {
	f.viewport.HalfViewDown()
	if f.viewport.AtBottom() {
		f.follow = true
	}
}

// FollowTail jumps to the newest line and resumes following.
func (f *Feed) FollowTail() {
	f.follow = true
	f.viewport.GotoBottom()
}

// Following reports whether the feed tracks the newest line.
func (f *Feed) Following() bool {
	return f.follow
}

// View renders the feed viewport.
func (f *Feed) View() string {
	if len(f.lines) == 0 {
		return feedInfoStyle.Render("Waiting for events. Hold the hotkey to dictate.")
	}
	return f.viewport.View()
}

func (f *Feed) refresh() {
	f.viewport.SetContent(strings.Join(f.lines, "\n"))
	if f.follow {
		f.viewport.GotoBottom()
	}
}

// sanitize strips ANSI sequences and newlines out of worker-supplied text
// so a transcript can't corrupt the screen.
func sanitize(text string) string {
	text = ansi.Strip(text)
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(text)
}

func compact(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		return s[:117] + "..."
	}
	return s
}
