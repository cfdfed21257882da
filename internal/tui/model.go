package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sber-whisper/desktop/internal/daemon/bus"
	"github.com/sber-whisper/desktop/internal/models"
)

var spinnerFrames = []string{"●", "○"}

// Model is the root Bubbletea model for the watch screen.
type Model struct {
	daemon  Daemon
	program *programRef

	// Daemon data
	status   *models.DaemonStatus
	settings *models.Settings

	// Stream state
	streamOK    bool
	lastEventID int64

	// UI state
	feed   *Feed
	width  int
	height int
	err    error

	// Spinner state
	spinnerFrame   int
	spinnerRunning bool

	streamCtx    context.Context
	streamCancel context.CancelFunc
}

// NewModel creates the initial watch model.
func NewModel(daemon Daemon, program *programRef) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		daemon:       daemon,
		program:      program,
		feed:         NewFeed(),
		streamOK:     true,
		streamCtx:    ctx,
		streamCancel: cancel,
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadStatusCmd(m.daemon),
		loadSettingsCmd(m.daemon),
		subscribeEventsCmd(m.streamCtx, m.daemon, 0, m.program),
		pollStatusTick(),
	)
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateDimensions()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case StatusMsg:
		m.status = msg.Status
		if cmd := m.ensureSpinner(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case SettingsMsg:
		m.settings = msg.Settings
		return m, nil

	case StreamEventMsg:
		m.lastEventID = msg.Event.ID
		m.feed.Append(msg.Event)
		m.trackPhase(msg.Event)
		if cmd := m.ensureSpinner(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case StreamEndedMsg:
		m.streamOK = false
		m.feed.AppendNote("event stream lost, reconnecting...")
		return m, resubscribeTick()

	case ResubscribeMsg:
		if !m.streamOK {
			m.streamOK = true
			cmds = append(cmds, subscribeEventsCmd(m.streamCtx, m.daemon, m.lastEventID, m.program))
		}
		return m, tea.Batch(cmds...)

	case ActionSentMsg:
		return m, loadStatusCmd(m.daemon)

	case TickMsg:
		cmds = append(cmds, loadStatusCmd(m.daemon), pollStatusTick())
		return m, tea.Batch(cmds...)

	case spinnerTickMsg:
		if m.phaseActive() {
			m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
			cmds = append(cmds, spinnerTick())
		} else {
			m.spinnerRunning = false
		}
		return m, tea.Batch(cmds...)

	case ErrorMsg:
		m.err = msg.Err
		return m, clearErrorAfter(5 * time.Second)

	case ClearErrorMsg:
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, watchKeys.Quit):
		return m.doQuit()

	case key.Matches(msg, watchKeys.Record):
		if m.status != nil && m.status.Session.Recording {
			return recordingCmd(m.daemon, "stop")
		}
		return recordingCmd(m.daemon, "start")

	case key.Matches(msg, watchKeys.Cancel):
		return recordingCmd(m.daemon, "cancel")

	case key.Matches(msg, watchKeys.Health):
		return healthcheckCmd(m.daemon)

	case key.Matches(msg, watchKeys.Clear):
		m.feed.Clear()
		return nil

	case key.Matches(msg, watchKeys.Up):
		m.feed.ScrollUp(1)
	case key.Matches(msg, watchKeys.Down):
		m.feed.ScrollDown(1)
	case key.Matches(msg, watchKeys.PageUp):
		m.feed.PageUp()
	case key.Matches(msg, watchKeys.PageDn):
		m.feed.PageDown()
	case key.Matches(msg, watchKeys.Follow):
		m.feed.FollowTail()
	}
	return nil
}

// doQuit cancels the stream, clears the program ref and quits.
func (m *Model) doQuit() tea.Cmd {
	m.streamCancel()
	m.program.Clear()
	return tea.Quit
}

// trackPhase keeps the header live between status polls by applying
// recording_state events directly.
func (m *Model) trackPhase(ev models.StreamEvent) {
	if ev.Type != bus.EventRecordingState || m.status == nil {
		return
	}
	var state struct {
		Phase     string `json:"phase"`
		Recording bool   `json:"recording"`
	}
	if err := json.Unmarshal(ev.Data, &state); err != nil {
		return
	}
	m.status.Session.Phase = state.Phase
	m.status.Session.Recording = state.Recording
}

func (m *Model) phaseActive() bool {
	return m.status != nil && m.status.Session.Phase != models.PhaseIdle
}

func (m *Model) ensureSpinner() tea.Cmd {
	if m.phaseActive() && !m.spinnerRunning {
		m.spinnerRunning = true
		return spinnerTick()
	}
	return nil
}

func (m *Model) updateDimensions() {
	// Header is two lines, the feed border eats two more, status bar one.
	feedHeight := m.height - 5
	if feedHeight < 1 {
		feedHeight = 1
	}
	feedWidth := m.width - 2
	if feedWidth < 1 {
		feedWidth = 1
	}
	m.feed.SetSize(feedWidth, feedHeight)
}

// ── View ─────────────────────────────────────────────────────────

// View renders the watch screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := m.renderHeader()
	feed := feedBorderStyle.Width(m.width - 2).Render(m.feed.View())
	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, header, feed, statusBar)
}

func (m Model) renderHeader() string {
	title := headerStyle.Render("Sber Whisper") + hintStyle.Render(" · watch")

	badge := m.renderPhaseBadge()
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(badge) - 1
	if gap < 1 {
		gap = 1
	}
	line1 := " " + title + strings.Repeat(" ", gap-1) + badge

	var parts []string
	if m.status != nil {
		if m.status.Worker.Running {
			parts = append(parts, fmt.Sprintf("sidecar pid %d", m.status.Worker.PID))
		} else {
			parts = append(parts, "sidecar stopped")
		}
		parts = append(parts, "hotkey "+m.status.Hotkey, "language "+m.status.LanguageMode)
	} else {
		parts = append(parts, "connecting...")
	}
	if !m.feed.Following() {
		parts = append(parts, "scrolled (G to follow)")
	}
	line2 := " " + hintStyle.Render(strings.Join(parts, " · "))

	return line1 + "\n" + line2
}

func (m Model) renderPhaseBadge() string {
	if m.status == nil {
		return badgeIdleStyle.Render("…")
	}
	frame := spinnerFrames[m.spinnerFrame%len(spinnerFrames)]
	switch m.status.Session.Phase {
	case models.PhaseRecording:
		return badgeRecordingStyle.Render(frame + " recording")
	case models.PhaseTranscribing:
		return badgeTranscribingStyle.Render(frame + " transcribing")
	default:
		return badgeIdleStyle.Render("○ idle")
	}
}

func (m Model) renderStatusBar() string {
	if m.err != nil {
		return statusBarStyle.
			Background(colorRed).
			Width(m.width).
			Render(" " + m.err.Error())
	}

	left := " " + keyHint("r", "record/stop") + "  " + keyHint("x", "cancel") + "  " +
		keyHint("h", "healthcheck") + "  " + keyHint("c", "clear") + "  " + keyHint("q", "quit")

	right := ""
	if m.streamOK {
		right = lipgloss.NewStyle().Foreground(colorGreen).Render("Connected") + " "
	} else {
		right = lipgloss.NewStyle().Foreground(colorYellow).Bold(true).Render("⚠ Reconnecting") + " "
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func keyHint(k, desc string) string {
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}
