package api

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/sber-whisper/desktop/internal/daemon/asr"
	"github.com/sber-whisper/desktop/internal/models"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AcceptedResponse acknowledges an intent handed to the daemon.
type AcceptedResponse struct {
	Status string `json:"status"`
}

// handleStatus handles GET /api/v1/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	current := s.settings.Current()
	resp := models.DaemonStatus{
		Version:      s.version,
		PID:          os.Getpid(),
		StartedAt:    s.startedAt,
		Worker:       s.sup.Status(),
		Session:      s.session.Status(),
		Hotkey:       current.Hotkey,
		LanguageMode: current.LanguageMode,
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleGetSettings handles GET /api/v1/settings.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.settings.Current())
}

// handlePutSettings handles PUT /api/v1/settings. The body is the full
// settings object; partial updates are the client's job.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var in models.Settings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.settings.Validate(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.settings.Save(&in); err != nil {
		s.log.Error("failed to apply settings", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, s.settings.Current())
}

// handleRecordingStart handles POST /api/v1/recording/start.
func (s *Server) handleRecordingStart(w http.ResponseWriter, r *http.Request) {
	s.session.StartRecording()
	respondJSON(w, http.StatusAccepted, AcceptedResponse{Status: "recording"})
}

// handleRecordingStop handles POST /api/v1/recording/stop.
func (s *Server) handleRecordingStop(w http.ResponseWriter, r *http.Request) {
	s.session.StopAndTranscribe()
	respondJSON(w, http.StatusAccepted, AcceptedResponse{Status: "transcribing"})
}

// handleRecordingCancel handles POST /api/v1/recording/cancel.
func (s *Server) handleRecordingCancel(w http.ResponseWriter, r *http.Request) {
	s.session.CancelCurrent()
	respondJSON(w, http.StatusAccepted, AcceptedResponse{Status: "cancelled"})
}

// handleHealthcheck handles POST /api/v1/healthcheck. The dispatch spawns
// the worker if it is down; the worker answers on the event stream.
func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if err := s.sup.Dispatch(asr.NewCommand(asr.CmdHealthcheck)); err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusAccepted, AcceptedResponse{Status: "dispatched"})
}

// handleShutdown handles POST /api/v1/daemon/shutdown. The response goes
// out before the daemon starts unwinding.
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusAccepted, AcceptedResponse{Status: "shutting down"})
	if s.shutdown != nil {
		s.shutdown()
	}
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
