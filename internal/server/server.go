// Package server wires the request pipeline into HTTP handlers and owns the
// response envelopes. Handlers are stateless; everything mutable lives in
// the injected collaborators.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/MarkoKrajceski/marko-sub000/internal/analytics"
	"github.com/MarkoKrajceski/marko-sub000/internal/anonymize"
	"github.com/MarkoKrajceski/marko-sub000/internal/guards"
	"github.com/MarkoKrajceski/marko-sub000/internal/mail"
	"github.com/MarkoKrajceski/marko-sub000/internal/pipeline"
	"github.com/MarkoKrajceski/marko-sub000/internal/rules"
)

// StatsSource answers time-range counting queries over recorded events.
// Implemented by the analytics Redis store; nil when analytics is disabled.
type StatsSource interface {
	CountSince(ctx context.Context, kind string, since time.Time) (int64, error)
}

// Server holds the handler dependencies.
type Server struct {
	pitchPipeline *pipeline.Pipeline
	leadPipeline  *pipeline.Pipeline
	originGuard   *guards.OriginGuard
	engine        *rules.Engine
	anon          *anonymize.Anonymizer
	recorder      *analytics.Recorder
	stats         StatsSource
	mailer        mail.Mailer
	mailTo        string
	maxBodyBytes  int64
	log           zerolog.Logger
}

// Config collects the server's collaborators. Recorder, Stats, and Mailer
// may be nil / absent; the corresponding side effects are skipped.
type Config struct {
	PitchPipeline *pipeline.Pipeline
	LeadPipeline  *pipeline.Pipeline
	OriginGuard   *guards.OriginGuard
	Engine        *rules.Engine
	Anonymizer    *anonymize.Anonymizer
	Recorder      *analytics.Recorder
	Stats         StatsSource
	Mailer        mail.Mailer
	MailTo        string
	MaxBodyBytes  int64
	Logger        zerolog.Logger
}

// New creates a Server.
func New(cfg Config) *Server {
	return &Server{
		pitchPipeline: cfg.PitchPipeline,
		leadPipeline:  cfg.LeadPipeline,
		originGuard:   cfg.OriginGuard,
		engine:        cfg.Engine,
		anon:          cfg.Anonymizer,
		recorder:      cfg.Recorder,
		stats:         cfg.Stats,
		mailer:        cfg.Mailer,
		mailTo:        cfg.MailTo,
		maxBodyBytes:  cfg.MaxBodyBytes,
		log:           cfg.Logger,
	}
}

// Routes returns the service mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pitch", s.withCORS(s.handlePitch))
	mux.HandleFunc("/api/lead", s.withCORS(s.handleLead))
	mux.HandleFunc("/api/stats", s.withCORS(s.handleStats))
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// withCORS reflects allow-listed origins into CORS headers and answers
// preflights. The origin guard owns the allow-list; this layer only serves
// browsers, the guard still enforces.
func (s *Server) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && s.originGuard.Allowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "portfolio-api",
	}, s.log)
}
