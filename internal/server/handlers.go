package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MarkoKrajceski/marko-sub000/internal/analytics"
	"github.com/MarkoKrajceski/marko-sub000/internal/metrics"
	"github.com/MarkoKrajceski/marko-sub000/internal/pipeline"
)

func (s *Server) handlePitch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	metrics.RecordRequest("pitch")
	defer func() { metrics.ObserveDuration("pitch", time.Since(start).Seconds()) }()

	rc, rej := s.screen(w, r, s.pitchPipeline)
	if rej != nil {
		metrics.RecordRejection(rej.Code)
		writeRejection(w, rej, requestID(rc), s.log)
		return
	}

	pitch, err := s.engine.Generate(rc.Pitch.Role, rc.Pitch.Focus)
	if err != nil {
		// A validated pair without a table entry is a configuration defect.
		// This is the one rejection that warrants full server-side detail.
		s.log.Error().Err(err).
			Str("request_id", rc.RequestID).
			Str("role", string(rc.Pitch.Role)).
			Str("focus", string(rc.Pitch.Focus)).
			Msg("pitch rule lookup failed")
		metrics.RecordRejection(pipeline.CodeInternal)
		writeError(w, http.StatusInternalServerError, pipeline.CodeInternal, "something went wrong", rc.RequestID, s.log)
		return
	}

	metrics.RecordPitch(string(rc.Pitch.Role), string(rc.Pitch.Focus))
	if s.recorder != nil {
		s.recorder.RecordPitch(analytics.PitchEvent{
			RequestID:  rc.RequestID,
			Role:       string(rc.Pitch.Role),
			Focus:      string(rc.Pitch.Focus),
			Query:      rc.Pitch.Query,
			IPHash:     rc.ClientKey,
			UAHash:     rc.UAHash,
			Confidence: pitch.Confidence,
		})
	}

	writeJSON(w, http.StatusOK, pitchResponse{
		Pitch:      pitch.Text,
		Confidence: pitch.Confidence,
		Timestamp:  rc.Timestamp.Format(time.RFC3339),
		RequestID:  rc.RequestID,
	}, s.log)
}

func (s *Server) handleLead(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	metrics.RecordRequest("lead")
	defer func() { metrics.ObserveDuration("lead", time.Since(start).Seconds()) }()

	rc, rej := s.screen(w, r, s.leadPipeline)
	if rej != nil {
		metrics.RecordRejection(rej.Code)
		writeRejection(w, rej, requestID(rc), s.log)
		return
	}

	metrics.LeadsCaptured.Inc()
	if s.recorder != nil {
		s.recorder.RecordLead(analytics.LeadEvent{
			Name:    rc.Lead.Name,
			Email:   rc.Lead.Email,
			Message: rc.Lead.Message,
		})
	}
	s.notifyLead(rc)

	writeJSON(w, http.StatusOK, leadResponse{
		OK:      true,
		Message: "Thanks for reaching out, I'll get back to you soon.",
	}, s.log)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, pipeline.CodeMethodNotAllowed, "method not allowed", "", s.log)
		return
	}
	if s.stats == nil {
		writeJSON(w, http.StatusOK, map[string]any{"enabled": false}, s.log)
		return
	}

	since := time.Now().UTC().Add(-24 * time.Hour)
	out := map[string]any{"enabled": true, "since": since.Format(time.RFC3339)}
	for _, kind := range []string{analytics.KindPitch, analytics.KindLead} {
		n, err := s.stats.CountSince(r.Context(), kind, since)
		if err != nil {
			s.log.Warn().Err(err).Str("kind", kind).Msg("stats query failed")
			continue
		}
		out[kind] = n
	}
	writeJSON(w, http.StatusOK, out, s.log)
}

// screen reads the body and runs the request through the given pipeline.
// It returns a nil rejection only when every guard passed; the context is
// non-nil whenever one could be built.
func (s *Server) screen(w http.ResponseWriter, r *http.Request, p *pipeline.Pipeline) (*pipeline.Context, *pipeline.Rejection) {
	if r.Method != http.MethodPost {
		return nil, &pipeline.Rejection{
			Status:  http.StatusMethodNotAllowed,
			Code:    pipeline.CodeMethodNotAllowed,
			Message: "method not allowed",
		}
	}

	// Read one byte past the limit so the size guard sees the overflow;
	// MaxBytesReader protects against unbounded bodies beyond that.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes+1))
	if err != nil {
		return nil, &pipeline.Rejection{
			Status:  http.StatusRequestEntityTooLarge,
			Code:    pipeline.CodeTooLarge,
			Message: fmt.Sprintf("request body exceeds %d bytes", s.maxBodyBytes),
		}
	}

	rc := pipeline.NewContext(r, body, s.anon)
	return rc, p.Run(r.Context(), rc)
}

// notifyLead dispatches the notification email without blocking the
// response. Failures are logged and swallowed.
func (s *Server) notifyLead(rc *pipeline.Context) {
	if s.mailer == nil {
		return
	}
	lead := *rc.Lead
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		subject := "New portfolio lead from " + lead.Name
		text := fmt.Sprintf("Name: %s\nEmail: %s\n\n%s", lead.Name, lead.Email, lead.Message)
		html := fmt.Sprintf("<p><b>Name:</b> %s<br><b>Email:</b> %s</p><p>%s</p>", lead.Name, lead.Email, lead.Message)
		if err := s.mailer.Send(ctx, s.mailTo, subject, html, text); err != nil {
			s.log.Warn().Err(err).Msg("lead notification failed")
		}
	}()
}

func requestID(rc *pipeline.Context) string {
	if rc != nil {
		return rc.RequestID
	}
	return uuid.New().String()
}
