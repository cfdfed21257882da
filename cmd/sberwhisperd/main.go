// Package main is the entry point for the sberwhisperd daemon.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/sber-whisper/desktop/internal/autostart"
	"github.com/sber-whisper/desktop/internal/buildinfo"
	"github.com/sber-whisper/desktop/internal/config"
	"github.com/sber-whisper/desktop/internal/daemon/api"
	"github.com/sber-whisper/desktop/internal/daemon/asr"
	"github.com/sber-whisper/desktop/internal/daemon/bus"
	"github.com/sber-whisper/desktop/internal/daemon/clip"
	"github.com/sber-whisper/desktop/internal/daemon/hotkey"
	"github.com/sber-whisper/desktop/internal/daemon/notify"
	"github.com/sber-whisper/desktop/internal/daemon/recording"
	"github.com/sber-whisper/desktop/internal/daemon/settings"
	"github.com/sber-whisper/desktop/internal/daemon/tray"
	"github.com/sber-whisper/desktop/internal/daemon/watcher"
	"github.com/sber-whisper/desktop/internal/logging"
	"github.com/sber-whisper/desktop/internal/models"
	"github.com/sber-whisper/desktop/internal/telemetry"
)

const eventBufferSize = 64

func main() {
	foreground := flag.Bool("foreground", false, "Run in foreground (no system tray, log to stderr)")
	port := flag.Int("port", 0, "Port for the control API (0 for dynamic allocation)")
	resources := flag.String("resources", "", "Extra directory to search for the sidecar")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	healthEvery := flag.Duration("healthcheck-interval", 5*time.Minute, "Sidecar healthcheck period (0 disables)")
	flag.Parse()

	if err := config.EnsureAppDir(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create app directory: %v\n", err)
		os.Exit(1)
	}
	if err := config.EnsureLogsDir(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logs directory: %v\n", err)
		os.Exit(1)
	}

	logFile, err := config.AppLogFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve log path: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(logging.Options{Level: *logLevel, File: logFile, Echo: *foreground})
	log := logging.WithComponent("daemon")

	// Single-instance guard.
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		log.Error("failed to check daemon status", "error", err)
		os.Exit(1)
	}
	if running {
		log.Error("daemon already running", "port", info.Port, "pid", info.PID)
		os.Exit(1)
	}

	d, err := newDaemon(daemonOptions{
		port:        *port,
		resourceDir: *resources,
		healthEvery: *healthEvery,
	})
	if err != nil {
		log.Error("failed to construct daemon", "error", err)
		os.Exit(1)
	}

	if *foreground {
		log.Info("running in foreground mode (no system tray)")
		runForeground(d)
	} else {
		log.Info("running in background mode (with system tray)")
		runWithTray(d)
	}
}

// runForeground runs the daemon without a system tray, blocking on signals.
func runForeground(d *daemon) {
	if err := d.start(); err != nil {
		d.log.Error("failed to start daemon", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		d.log.Info("received signal, shutting down", "signal", sig.String())
	case <-d.shutdownCh:
		d.log.Info("shutdown requested, shutting down")
	}

	d.stop()
	fmt.Println("Daemon stopped")
}

// runWithTray runs the daemon with a system tray icon on the main goroutine.
// systray.Run must occupy the main goroutine on macOS (Cocoa requirement).
func runWithTray(d *daemon) {
	onStart := func() {
		if err := d.start(); err != nil {
			d.log.Error("failed to start daemon", "error", err)
			os.Exit(1)
		}

		// Quit the tray when a shutdown comes from the API or a signal;
		// cleanup runs in onExit.
		go func() {
			<-d.shutdownCh
			tray.Quit()
		}()

		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			d.log.Info("received signal, shutting down", "signal", sig.String())
			tray.Quit()
		}()

		trayCh := d.subscribe()
		go refreshTrayOnEvents(trayCh)
	}

	onExit := func() {
		d.stop()
		fmt.Println("Daemon stopped")
	}

	// This blocks the main goroutine until the tray exits.
	tray.Run(d, onStart, onExit)
}

type daemonOptions struct {
	port        int
	resourceDir string
	healthEvery time.Duration
}

// daemon bundles every subsystem for one application run. It implements
// tray.DaemonState so the tray can read status and hand over intents.
type daemon struct {
	log  *slog.Logger
	opts daemonOptions

	hub      *bus.Hub
	sup      *asr.Supervisor
	ctrl     *recording.Controller
	settings *settings.Manager
	hotkey   *hotkey.Manager
	notifier *notify.Notifier
	tel      *telemetry.Client
	server   *api.Server
	watch    *watcher.Watcher

	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	subMu      sync.Mutex
	cancelSubs []func()
}

func newDaemon(opts daemonOptions) (*daemon, error) {
	d := &daemon{
		log:        logging.WithComponent("daemon"),
		opts:       opts,
		hub:        bus.New(eventBufferSize),
		shutdownCh: make(chan struct{}),
	}

	appDir, err := config.AppDir()
	if err != nil {
		return nil, err
	}
	logsDir, err := config.LogsDir()
	if err != nil {
		return nil, err
	}

	// The hotkey manager exists before the controller; edges cannot fire
	// until start registers the chord.
	d.hotkey = hotkey.New(logging.WithComponent("hotkey"), edgeHandler{d})

	d.settings = settings.NewManager(settings.Config{
		Logger: logging.WithComponent("settings"),
		Hub:    d.hub,
		Hotkey: d.hotkey,
		Autostart: func(enabled bool) error {
			return autostart.Apply(logging.WithComponent("autostart"), enabled)
		},
		PushConfig: func(languageMode string, popupTimeoutSec int) {
			d.sup.DispatchOrEmit(asr.NewSetConfig(languageMode, popupTimeoutSec))
		},
	})
	if err := d.settings.Load(); err != nil {
		return nil, err
	}

	d.notifier = notify.New(logging.WithComponent("notify"), func() bool {
		return d.settings.Current().Notifications
	})
	d.tel = telemetry.New(logging.WithComponent("telemetry"), appDir, func() bool {
		return d.settings.Current().Telemetry
	})

	d.sup = asr.New(asr.Config{
		Logger:              logging.WithComponent("asr"),
		LogsDir:             logsDir,
		ResourceDir:         opts.resourceDir,
		AllowScriptFallback: asr.AllowScriptFallback(buildinfo.IsDev()),
		Clipboard:           clip.New(),
		Emit:                d.emitASR,
	})

	d.ctrl = recording.New(recording.Config{
		Logger:     logging.WithComponent("recording"),
		Dispatcher: d.sup,
		Hub:        d.hub,
		Notifier:   d.notifier,
		Emit:       d.emitASR,
		PopupTimeoutSec: func() int {
			return d.settings.Current().PopupTimeoutSec
		},
	})
	d.sup.SetOnDisconnect(d.ctrl.HandleWorkerDisconnect)

	server, err := api.New(api.Config{
		Logger:     logging.WithComponent("api"),
		Hub:        d.hub,
		Supervisor: d.sup,
		Session:    d.ctrl,
		Settings:   d.settings,
		Version:    buildinfo.Version,
		Shutdown:   d.requestShutdown,
	})
	if err != nil {
		return nil, err
	}
	d.server = server

	return d, nil
}

// start brings up the network and OS integrations. Construction stays
// separate so the tray can query status before start completes.
func (d *daemon) start() error {
	if err := d.server.Start(d.opts.port); err != nil {
		return err
	}

	info := models.NewDaemonInfo("localhost", d.server.Port(), os.Getpid(), buildinfo.Version)
	if err := config.SaveDaemonInfo(info); err != nil {
		d.server.Stop()
		return fmt.Errorf("failed to write daemon info: %w", err)
	}
	d.log.Info("daemon started", "port", d.server.Port(), "pid", os.Getpid(), "version", buildinfo.Version)

	s := d.settings.Current()

	if settingsPath, err := config.SettingsFile(); err == nil {
		w, err := watcher.New(logging.WithComponent("watcher"), settingsPath, d.settings.ReloadFromDisk)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			d.log.Warn("settings watcher unavailable", "error", err)
		} else {
			d.watch = w
		}
	}

	if err := d.hotkey.Start(s.Hotkey); err != nil {
		// A dictation daemon without a hotkey is still controllable over
		// the API and tray, so keep going.
		d.log.Error("failed to register hotkey", "hotkey", s.Hotkey, "error", err)
		d.emitASR(asr.ErrorEvent("Hotkey registration failed: " + err.Error()))
	}

	if err := autostart.Apply(logging.WithComponent("autostart"), s.AutoLaunch); err != nil {
		d.log.Warn("failed to apply auto-launch setting", "error", err)
	}

	// Worker handshake off the startup path; a broken sidecar must not
	// block the daemon from coming up.
	go d.sup.Bootstrap(s.LanguageMode, s.PopupTimeoutSec)
	go d.sup.RunHealthMonitor(d.shutdownCh, d.opts.healthEvery)

	telCh := d.subscribe()
	go d.pumpTelemetry(telCh)

	d.tel.Capture("daemon_started", map[string]any{
		"version": buildinfo.Version,
		"os":      runtime.GOOS,
	})
	return nil
}

// stop unwinds everything start brought up. Best-effort from top to
// bottom; a failed step never skips the rest.
func (d *daemon) stop() {
	d.requestShutdown()

	d.hotkey.Stop()
	if d.watch != nil {
		d.watch.Stop()
	}

	d.subMu.Lock()
	cancels := d.cancelSubs
	d.cancelSubs = nil
	d.subMu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}

	d.sup.Shutdown()
	d.server.Stop()

	d.tel.Capture("daemon_stopped", nil)
	d.tel.Close()

	if err := config.RemoveDaemonInfo(); err != nil {
		d.log.Warn("failed to remove daemon info", "error", err)
	}
	d.log.Info("daemon stopped")
}

func (d *daemon) requestShutdown() {
	d.shutdownOnce.Do(func() { close(d.shutdownCh) })
}

// subscribe registers a hub consumer whose cancel runs at daemon stop.
func (d *daemon) subscribe() <-chan bus.Event {
	ch, cancel := d.hub.Subscribe()
	d.subMu.Lock()
	d.cancelSubs = append(d.cancelSubs, cancel)
	d.subMu.Unlock()
	return ch
}

// emitASR routes one worker (or synthetic) event into the daemon: the
// event stream first, then session-phase tracking.
func (d *daemon) emitASR(ev asr.Event) {
	d.hub.Publish(bus.EventASR, ev)
	d.ctrl.ObserveEvent(ev)
}

// pumpTelemetry folds hub traffic into coarse usage counters. Payloads
// never leave the machine, only event names and latency.
func (d *daemon) pumpTelemetry(ch <-chan bus.Event) {
	for ev := range ch {
		if ev.Type != bus.EventASR {
			continue
		}
		var payload struct {
			Event     string  `json:"event"`
			LatencyMS float64 `json:"latency_ms"`
		}
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			continue
		}
		switch payload.Event {
		case asr.EvFinalTranscript:
			d.tel.Capture("transcription_completed", nil)
		case asr.EvMetrics:
			d.tel.Capture("sidecar_metrics", map[string]any{"latency_ms": payload.LatencyMS})
		case asr.EvError:
			d.tel.Capture("sidecar_error", nil)
		}
	}
}

// refreshTrayOnEvents keeps the tray menu in step with the daemon.
func refreshTrayOnEvents(ch <-chan bus.Event) {
	for ev := range ch {
		switch ev.Type {
		case bus.EventASR, bus.EventRecordingState, bus.EventSettingsChanged:
			tray.Refresh()
		}
	}
}

// Status implements tray.DaemonState.
func (d *daemon) Status() tray.Status {
	worker := d.sup.Status()
	session := d.ctrl.Status()
	return tray.Status{
		WorkerRunning: worker.Running,
		WorkerPID:     worker.PID,
		Phase:         session.Phase,
		Recording:     session.Recording,
		Hotkey:        d.settings.Current().Hotkey,
	}
}

// ToggleRecording implements tray.DaemonState.
func (d *daemon) ToggleRecording() {
	if d.ctrl.Recording() {
		d.ctrl.StopAndTranscribe()
	} else {
		d.ctrl.StartRecording()
	}
}

// CancelTranscription implements tray.DaemonState.
func (d *daemon) CancelTranscription() {
	d.ctrl.CancelCurrent()
}

// OpenSettings implements tray.DaemonState.
func (d *daemon) OpenSettings() {
	path, err := config.SettingsFile()
	if err != nil {
		d.log.Warn("failed to resolve settings path", "error", err)
		return
	}
	if err := openPath(path); err != nil {
		d.log.Warn("failed to open settings file", "path", path, "error", err)
	}
}

// RequestShutdown implements tray.DaemonState.
func (d *daemon) RequestShutdown() {
	d.requestShutdown()
}

// openPath hands a file to the desktop's default opener.
func openPath(path string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path).Start()
	default:
		return exec.Command("xdg-open", path).Start()
	}
}

// edgeHandler adapts hotkey edges onto the recording controller.
type edgeHandler struct {
	d *daemon
}

func (h edgeHandler) OnPress()   { h.d.ctrl.HotkeyPressed() }
func (h edgeHandler) OnRelease() { h.d.ctrl.HotkeyReleased() }
