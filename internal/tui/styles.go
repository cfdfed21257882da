package tui

import "github.com/charmbracelet/lipgloss"

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Layout styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(lipgloss.AdaptiveColor{Light: "235", Dark: "236"})

	feedBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim)
)

// Phase badge styles.
var (
	badgeIdleStyle         = lipgloss.NewStyle().Foreground(colorDim)
	badgeRecordingStyle    = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	badgeTranscribingStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
)

// Feed line styles.
var (
	feedTimeStyle       = lipgloss.NewStyle().Foreground(colorDim)
	feedTranscriptStyle = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	feedPartialStyle    = lipgloss.NewStyle().Foreground(colorDim)
	feedErrorStyle      = lipgloss.NewStyle().Foreground(colorRed)
	feedStateStyle      = lipgloss.NewStyle().Foreground(colorCyan)
	feedInfoStyle       = lipgloss.NewStyle().Foreground(colorDim)
	feedMetricStyle     = lipgloss.NewStyle().Foreground(colorGreen)
)

// Key hint styles for status bar.
var (
	keyStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	hintStyle = lipgloss.NewStyle().Foreground(colorDim)
)
