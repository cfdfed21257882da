// Package tui implements the live event viewer behind 'sberwhisper watch'.
package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sber-whisper/desktop/internal/models"
)

// Daemon is the slice of the control API the watch screen uses. The CLI's
// HTTP client satisfies it.
type Daemon interface {
	Status() (*models.DaemonStatus, error)
	Settings() (*models.Settings, error)
	Recording(action string) error
	Healthcheck() error
	StreamEvents(ctx context.Context, lastID int64, fn func(models.StreamEvent)) error
}

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Run launches the watch screen against a running daemon.
func Run(daemon Daemon) error {
	ref := &programRef{}
	model := NewModel(daemon, ref)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	// Store program reference for goroutine sends
	ref.Set(p)

	_, err := p.Run()
	return err
}
