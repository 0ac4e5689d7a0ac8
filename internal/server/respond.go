package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/MarkoKrajceski/marko-sub000/internal/pipeline"
	"github.com/MarkoKrajceski/marko-sub000/internal/sanitize"
)

// errorResponse is the uniform error envelope shared by every rejection.
type errorResponse struct {
	Error      bool                  `json:"error"`
	Message    string                `json:"message"`
	Code       string                `json:"code"`
	Timestamp  string                `json:"timestamp"`
	RequestID  string                `json:"requestId,omitempty"`
	RetryAfter int                   `json:"retryAfter,omitempty"`
	Details    []sanitize.FieldError `json:"details,omitempty"`
}

// pitchResponse is the success envelope of the pitch endpoint.
type pitchResponse struct {
	Pitch      string  `json:"pitch"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
	RequestID  string  `json:"requestId"`
}

// leadResponse is the success envelope of the lead endpoint.
type leadResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message, requestID string, log zerolog.Logger) {
	writeJSON(w, status, errorResponse{
		Error:     true,
		Message:   message,
		Code:      code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
	}, log)
}

func writeRejection(w http.ResponseWriter, rej *pipeline.Rejection, requestID string, log zerolog.Logger) {
	if rej.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rej.RetryAfter))
	}
	writeJSON(w, rej.Status, errorResponse{
		Error:      true,
		Message:    rej.Message,
		Code:       rej.Code,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		RequestID:  requestID,
		RetryAfter: rej.RetryAfter,
		Details:    rej.Fields,
	}, log)
}
