package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sber-whisper/desktop/internal/models"
)

func loadStatusCmd(d Daemon) tea.Cmd {
	return func() tea.Msg {
		st, err := d.Status()
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to load status: %w", err)}
		}
		return StatusMsg{Status: st}
	}
}

func loadSettingsCmd(d Daemon) tea.Cmd {
	return func() tea.Msg {
		s, err := d.Settings()
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to load settings: %w", err)}
		}
		return SettingsMsg{Settings: s}
	}
}

// subscribeEventsCmd opens the SSE stream and forwards each event into the
// program. The goroutine lives until ctx is cancelled or the stream breaks.
func subscribeEventsCmd(ctx context.Context, d Daemon, lastID int64, program *programRef) tea.Cmd {
	return func() tea.Msg {
		go func() {
			err := d.StreamEvents(ctx, lastID, func(ev models.StreamEvent) {
				program.Send(StreamEventMsg{Event: ev})
			})
			if ctx.Err() != nil {
				return
			}
			program.Send(StreamEndedMsg{Err: err})
		}()
		return nil
	}
}

func recordingCmd(d Daemon, action string) tea.Cmd {
	return func() tea.Msg {
		if err := d.Recording(action); err != nil {
			return ErrorMsg{Err: err}
		}
		return ActionSentMsg{}
	}
}

func healthcheckCmd(d Daemon) tea.Cmd {
	return func() tea.Msg {
		if err := d.Healthcheck(); err != nil {
			return ErrorMsg{Err: err}
		}
		return ActionSentMsg{}
	}
}

func pollStatusTick() tea.Cmd {
	return tea.Tick(2*time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

func spinnerTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(_ time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func resubscribeTick() tea.Cmd {
	return tea.Tick(2*time.Second, func(_ time.Time) tea.Msg {
		return ResubscribeMsg{}
	})
}

func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}
