package asr

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handle is one spawned worker process together with its stdin pipe.
// Every spawn mints a fresh generation ID so late output from a replaced
// process can be told apart from the current one.
type Handle struct {
	Generation string
	Label      string

	cmd       *exec.Cmd
	stdin     io.Closer
	in        *bufio.Writer
	stdout    io.Reader
	stderr    io.Reader
	startedAt time.Time

	readers sync.WaitGroup
	done    chan struct{}
	waitErr error
}

// startWorker spawns path with args, captured pipes, and the environment
// overlay the worker expects. label names the attempt in errors and logs.
func startWorker(path string, args []string, label, logsDir string) (*Handle, error) {
	cmd := exec.Command(path, args...)
	cmd.Env = append(os.Environ(),
		"SBER_WHISPER_LOG_DIR="+logsDir,
		"PYTHONUNBUFFERED=1",
		"PYTHONIOENCODING=utf-8",
		"PYTHONUTF8=1",
	)
	hideConsoleWindow(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to capture sidecar stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to capture sidecar stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to capture sidecar stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to spawn sidecar '%s': %w", label, err)
	}

	h := &Handle{
		Generation: uuid.NewString(),
		Label:      label,
		cmd:        cmd,
		stdin:      stdin,
		in:         bufio.NewWriter(stdin),
		stdout:     stdout,
		stderr:     stderr,
		startedAt:  time.Now(),
		done:       make(chan struct{}),
	}
	h.readers.Add(2)
	go h.reap()
	return h, nil
}

// reap waits for both pipe readers to drain before collecting the exit
// status. Calling Wait earlier would close the pipes under the readers.
func (h *Handle) reap() {
	h.readers.Wait()
	h.waitErr = h.cmd.Wait()
	close(h.done)
}

func (h *Handle) readerDone() {
	h.readers.Done()
}

// Alive reports whether the process has been reaped yet. A freshly dead
// process reads as alive until its output drains; writes to it fail and
// the next liveness check after the reap restarts it.
func (h *Handle) Alive() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// WaitErr returns the exit error once the process has been reaped, nil
// before that or on a clean exit.
func (h *Handle) WaitErr() error {
	select {
	case <-h.done:
		return h.waitErr
	default:
		return nil
	}
}

// PID returns the operating system process ID, or zero for handles
// without a live process.
func (h *Handle) PID() int {
	if h.cmd == nil || h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// StartedAt returns the spawn time.
func (h *Handle) StartedAt() time.Time {
	return h.startedAt
}

// writeLine writes one serialized command line and flushes it. Callers
// must serialize access.
func (h *Handle) writeLine(line []byte) error {
	if _, err := h.in.Write(line); err != nil {
		return fmt.Errorf("failed to write sidecar command: %w", err)
	}
	if err := h.in.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write sidecar command: %w", err)
	}
	if err := h.in.Flush(); err != nil {
		return fmt.Errorf("failed to flush sidecar command: %w", err)
	}
	return nil
}

// kill force-terminates the process and waits up to timeout for the
// reaper to collect it.
func (h *Handle) kill(timeout time.Duration) {
	if h.cmd != nil && h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
	if h.stdin != nil {
		_ = h.stdin.Close()
	}
	select {
	case <-h.done:
	case <-time.After(timeout):
	}
}
