package asr

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

// readStdout consumes the worker's stdout line by line until the pipe
// closes, then runs the disconnect path for the handle.
func (s *Supervisor) readStdout(h *Handle) {
	defer h.readerDone()
	r := bufio.NewReader(h.stdout)
	for {
		raw, err := r.ReadBytes('\n')
		if len(raw) > 0 {
			s.handleStdoutLine(h, raw)
		}
		if err != nil {
			if err != io.EOF {
				s.log.Warn("sidecar stdout read error", "error", err)
			}
			break
		}
	}
	s.workerDisconnected(h)
}

func (s *Supervisor) handleStdoutLine(h *Handle, raw []byte) {
	line := bytes.TrimRight(raw, "\r\n")
	if len(line) == 0 {
		return
	}
	if !utf8.Valid(line) {
		s.log.Warn("sidecar stdout contained non-UTF8 bytes; decoding lossy")
		line = bytes.ToValidUTF8(line, []byte("�"))
	}

	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		s.log.Warn("invalid sidecar JSON", "line", string(line), "error", err)
		return
	}

	if !s.isCurrent(h) {
		s.log.Debug("dropping event from replaced sidecar", "generation", h.Generation, "event", ev.Name())
		return
	}

	switch ev.Name() {
	case EvFinalTranscript:
		if text, ok := ev.Text(); ok {
			s.copyTranscript(text)
		}
	case EvReady:
		s.log.Info("sidecar ready event received")
	}

	s.emit(ev)
}

// readStderr forwards the worker's diagnostic output to the daemon log.
// Decode problems never fail the worker.
func (s *Supervisor) readStderr(h *Handle) {
	defer h.readerDone()
	sc := bufio.NewScanner(h.stderr)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(ansi.Strip(sc.Text()))
		if line == "" {
			continue
		}
		s.log.Info("sidecar stderr", "line", line)
	}
	if err := sc.Err(); err != nil {
		s.log.Debug("sidecar stderr read error", "error", err)
	}
}
