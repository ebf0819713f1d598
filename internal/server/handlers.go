package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// HistoryRequest is the /api/history request body. Both fields are
// optional: an empty date means "today" and a zero limit means the
// configured default.
type HistoryRequest struct {
	Date  string `json:"date"`
	Limit int    `json:"limit"`
}

// ErrorResponse is the boundary error shape.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// StatusResponse is the /api/status payload.
type StatusResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

var serverStartTime = time.Now()

// handleRoot handles the / endpoint.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "almanac",
	})
}

// handleHealth handles the /health endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus handles the /api/status endpoint.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, StatusResponse{
		Service: "almanac",
		Version: "1.0",
		Uptime:  time.Since(serverStartTime).Round(time.Second).String(),
	})
}

// handleHistory handles /api/history. Invalid dates are the caller's
// fault (400); anything the pipeline recovers from still answers 200
// with a well-formed result object.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var req HistoryRequest
	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "body must be JSON like {\"date\":\"YYYY-MM-DD\",\"limit\":25}"})
			return
		}
	default:
		req.Date = r.URL.Query().Get("date")
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				req.Limit = n
			}
		}
	}

	result := s.curator.Curate(r.Context(), req.Date, req.Limit)
	if !result.Success && result.IsInvalidInput() {
		s.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: result.Error})
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// respondJSON writes a JSON response with the given status code.
func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Failed to encode response", "error", err.Error())
	}
}
