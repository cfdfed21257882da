package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/sber-whisper/desktop/internal/config"
	"github.com/sber-whisper/desktop/internal/models"
)

const requestTimeout = 10 * time.Second

// Client talks to a running daemon over its loopback HTTP API.
type Client struct {
	base string
	http *http.Client
}

// Connect locates the running daemon via daemon.yaml. It does not start
// one; commands that want auto-start call EnsureDaemon first.
func Connect() (*Client, error) {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return nil, fmt.Errorf("failed to check daemon status: %w", err)
	}
	if !running || info == nil {
		return nil, fmt.Errorf("daemon is not running. Start it with 'sberwhisper daemon start'")
	}
	return &Client{
		base: fmt.Sprintf("http://%s:%d/api/v1", info.Host, info.Port),
		http: &http.Client{Timeout: requestTimeout},
	}, nil
}

// EnsureDaemon makes sure the daemon is running, starting it if necessary.
func EnsureDaemon() error {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return nil
	}

	// Clean up stale daemon info if it exists
	if info != nil {
		_ = config.RemoveDaemonInfo()
	}

	return startDaemon()
}

// startDaemon starts the daemon process in the background.
func startDaemon() error {
	daemonPath, err := findDaemonBinary()
	if err != nil {
		return err
	}

	cmd := exec.Command(daemonPath)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	// Wait for daemon to be ready (max 5 seconds)
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		running, _, err := config.IsDaemonRunning()
		if err == nil && running {
			return nil
		}
	}

	return fmt.Errorf("daemon failed to start within timeout")
}

// findDaemonBinary locates the sberwhisperd binary.
func findDaemonBinary() (string, error) {
	// Try PATH first
	path, err := exec.LookPath("sberwhisperd")
	if err == nil {
		return path, nil
	}

	// Try next to the current executable
	execPath, err := os.Executable()
	if err == nil {
		daemonPath := filepath.Join(filepath.Dir(execPath), daemonBinaryName())
		if _, err := os.Stat(daemonPath); err == nil {
			return daemonPath, nil
		}
	}

	// Try build directory
	local := filepath.Join("build", daemonBinaryName())
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	return "", fmt.Errorf("sberwhisperd not found. Install or build it first")
}

func daemonBinaryName() string {
	if runtime.GOOS == "windows" {
		return "sberwhisperd.exe"
	}
	return "sberwhisperd"
}

// Status fetches GET /status.
func (c *Client) Status() (*models.DaemonStatus, error) {
	var out models.DaemonStatus
	if err := c.getJSON("/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Settings fetches GET /settings.
func (c *Client) Settings() (*models.Settings, error) {
	var out models.Settings
	if err := c.getJSON("/settings", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveSettings sends PUT /settings and returns the applied settings.
func (c *Client) SaveSettings(s *models.Settings) (*models.Settings, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPut, c.base+"/settings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var applied models.Settings
	if err := json.NewDecoder(resp.Body).Decode(&applied); err != nil {
		return nil, err
	}
	return &applied, nil
}

// Recording posts a session intent: "start", "stop", or "cancel".
func (c *Client) Recording(action string) error {
	return c.post("/recording/" + action)
}

// Healthcheck asks the daemon to ping the sidecar.
func (c *Client) Healthcheck() error {
	return c.post("/healthcheck")
}

// ShutdownDaemon requests an orderly daemon exit.
func (c *Client) ShutdownDaemon() error {
	return c.post("/daemon/shutdown")
}

// StreamEvents subscribes to GET /events and invokes fn per event until
// ctx is cancelled or the stream breaks.
func (c *Client) StreamEvents(ctx context.Context, lastID int64, fn func(models.StreamEvent)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/events", nil)
	if err != nil {
		return err
	}
	if lastID > 0 {
		req.Header.Set("Last-Event-ID", strconv.FormatInt(lastID, 10))
	}

	// No client timeout: the stream lives until cancelled.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errorFromResponse(resp)
	}

	var ev models.StreamEvent
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if ev.Type != "" || len(ev.Data) > 0 {
				fn(ev)
			}
			ev = models.StreamEvent{}
		case strings.HasPrefix(line, "id: "):
			ev.ID, _ = strconv.ParseInt(line[len("id: "):], 10, 64)
		case strings.HasPrefix(line, "event: "):
			ev.Type = line[len("event: "):]
		case strings.HasPrefix(line, "data: "):
			ev.Data = json.RawMessage(line[len("data: "):])
		}
		// Comment lines (": keep-alive") fall through untouched.
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return ctx.Err()
}

func (c *Client) getJSON(path string, out any) error {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errorFromResponse(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) post(path string) error {
	resp, err := c.http.Post(c.base+path, "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	return nil
}

// errorFromResponse surfaces the daemon's {"error": ...} body, or the
// HTTP status when the body is not the expected shape.
func errorFromResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return fmt.Errorf("%s", body.Error)
	}
	return fmt.Errorf("daemon returned %s", resp.Status)
}
