package cli

import "github.com/charmbracelet/lipgloss"

// Adaptive colors shared across CLI output.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Semantic styles for CLI output.
var (
	styleBrand   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleVersion = lipgloss.NewStyle().Foreground(colorGreen)
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleHint    = lipgloss.NewStyle().Foreground(colorDim)
)

// Session phase badge styles.
var (
	badgeIdle         = lipgloss.NewStyle().Foreground(colorDim)
	badgeRecording    = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	badgeTranscribing = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
)

// phaseBadge renders a session phase with its color.
func phaseBadge(phase string) string {
	switch phase {
	case "recording":
		return badgeRecording.Render("● recording")
	case "transcribing":
		return badgeTranscribing.Render("◌ transcribing")
	default:
		return badgeIdle.Render("○ idle")
	}
}
