package tray

import (
	"fmt"

	"github.com/getlantern/systray"
)

var (
	state   DaemonState
	onStart func()
	onExit  func()

	workerItem  *systray.MenuItem
	sessionItem *systray.MenuItem
	toggleItem  *systray.MenuItem
	cancelItem  *systray.MenuItem
	openItem    *systray.MenuItem
	quitItem    *systray.MenuItem
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready (launch daemon services here).
// onExitFn is called when the tray exits (cleanup here).
func Run(s DaemonState, onStartFn, onExitFn func()) {
	state = s
	onStart = onStartFn
	onExit = onExitFn
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady() {
	systray.SetTemplateIcon(iconData, iconData)
	systray.SetTooltip("Sber Whisper")

	// Header
	header := systray.AddMenuItem("Sber Whisper", "")
	header.Disable()

	// Status rows
	workerItem = systray.AddMenuItem("Sidecar: starting...", "")
	workerItem.Disable()
	sessionItem = systray.AddMenuItem("Session: idle", "")
	sessionItem.Disable()

	systray.AddSeparator()

	// Actions
	toggleItem = systray.AddMenuItem("Start Recording", "Start a dictation session")
	cancelItem = systray.AddMenuItem("Cancel Transcription", "Drop the current job")
	cancelItem.Disable()

	systray.AddSeparator()

	openItem = systray.AddMenuItem("Open Settings File", "Edit app_settings.json")
	quitItem = systray.AddMenuItem("Quit", "Shut down Sber Whisper")

	// Start the daemon services
	if onStart != nil {
		onStart()
	}

	Refresh()

	// Handle click events
	go handleClicks()
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	for {
		select {
		case <-toggleItem.ClickedCh:
			if state != nil {
				state.ToggleRecording()
			}

		case <-cancelItem.ClickedCh:
			if state != nil {
				state.CancelTranscription()
			}

		case <-openItem.ClickedCh:
			if state != nil {
				state.OpenSettings()
			}

		case <-quitItem.ClickedCh:
			if state != nil {
				state.RequestShutdown()
			}
		}
	}
}

// Refresh re-reads daemon state into the menu. Safe to call from any
// goroutine; systray serializes item updates internally.
func Refresh() {
	if state == nil || workerItem == nil {
		return
	}
	st := state.Status()

	if st.WorkerRunning {
		workerItem.SetTitle(fmt.Sprintf("Sidecar: running (pid %d)", st.WorkerPID))
	} else {
		workerItem.SetTitle("Sidecar: stopped")
	}

	sessionItem.SetTitle("Session: " + st.Phase)

	if st.Recording {
		toggleItem.SetTitle("Stop && Transcribe")
	} else {
		toggleItem.SetTitle("Start Recording")
	}

	if st.Phase == "transcribing" {
		cancelItem.Enable()
	} else {
		cancelItem.Disable()
	}

	systray.SetTooltip(formatTooltip(st))
}

func formatTooltip(st Status) string {
	verb := "idle"
	switch {
	case st.Recording:
		verb = "recording"
	case st.Phase != "":
		verb = st.Phase
	}
	if st.Hotkey == "" {
		return "Sber Whisper — " + verb
	}
	return fmt.Sprintf("Sber Whisper — %s (%s to talk)", verb, st.Hotkey)
}
