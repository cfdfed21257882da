// Package tray implements the system tray icon and menu for the daemon.
package tray

// DaemonState provides read-only status and user intents for the tray.
type DaemonState interface {
	Status() Status
	ToggleRecording()
	CancelTranscription()
	OpenSettings()
	RequestShutdown()
}

// Status describes the daemon for display in the tray menu.
type Status struct {
	WorkerRunning bool
	WorkerPID     int
	Phase         string // "idle", "recording", "transcribing"
	Recording     bool
	Hotkey        string
}
