package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MarkoKrajceski/marko-sub000/internal/analytics"
	"github.com/MarkoKrajceski/marko-sub000/internal/anonymize"
	"github.com/MarkoKrajceski/marko-sub000/internal/config"
	"github.com/MarkoKrajceski/marko-sub000/internal/guards"
	"github.com/MarkoKrajceski/marko-sub000/internal/mail"
	"github.com/MarkoKrajceski/marko-sub000/internal/pipeline"
	"github.com/MarkoKrajceski/marko-sub000/internal/ratelimit"
	"github.com/MarkoKrajceski/marko-sub000/internal/rules"
	"github.com/MarkoKrajceski/marko-sub000/internal/scan"
	"github.com/MarkoKrajceski/marko-sub000/internal/server"
)

func main() {
	// Load environment variables from .env if present
	godotenv.Load()

	cfg := config.Load()
	log := newLogger(cfg.Logging)
	log.Info().Msg("configuration loaded")

	anon := anonymize.New(cfg.Security.AnonymizerSecret)
	scanner := scan.NewScanner()
	originGuard := guards.NewOriginGuard(cfg.Security.AllowedOrigins)
	engine := rules.NewEngine()

	// Redis backs analytics and, optionally, the shared rate-limit window.
	var rdb *redis.Client
	needsRedis := cfg.Analytics.Enabled || strings.EqualFold(cfg.RateLimit.Backend, "redis")
	if needsRedis {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Analytics.RedisAddr,
			Password: cfg.Analytics.RedisPassword,
			DB:       cfg.Analytics.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Analytics.RedisAddr).Msg("redis unreachable at startup, continuing degraded")
		}
		cancel()
	}

	var limiter ratelimit.Limiter
	if strings.EqualFold(cfg.RateLimit.Backend, "redis") && rdb != nil {
		limiter = ratelimit.NewRedisWindow(rdb, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, log)
		log.Info().Msg("rate limiting: shared redis window")
	} else {
		limiter = ratelimit.NewSlidingWindow(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		log.Info().Msg("rate limiting: per-instance memory window")
	}
	retryAfter := int(cfg.RateLimit.Window / time.Second)

	var recorder *analytics.Recorder
	var stats server.StatsSource
	if cfg.Analytics.Enabled && rdb != nil {
		store := analytics.NewRedisStore(rdb)
		recorder = analytics.NewRecorder(store, analytics.Retention{
			Pitch: cfg.Analytics.PitchRetention,
			Lead:  cfg.Analytics.LeadRetention,
		}, cfg.Analytics.BufferSize, log)
		stats = store
	}

	var mailer mail.Mailer
	if cfg.Mail.Enabled && cfg.Mail.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
	} else {
		mailer = mail.NewLogMailer(log)
	}

	sizeGuard := guards.NewBodySizeGuard(cfg.Security.MaxBodyBytes)
	scanGuard := guards.NewAttackScanGuard(scanner, log)

	pitchPipeline := pipeline.New(log,
		originGuard,
		sizeGuard,
		scanGuard,
		&guards.PitchValidationGuard{},
		guards.NewRateLimitGuard(limiter, retryAfter, true),
	)
	leadPipeline := pipeline.New(log,
		originGuard,
		sizeGuard,
		scanGuard,
		&guards.LeadValidationGuard{},
		guards.NewRateLimitGuard(limiter, retryAfter, cfg.RateLimit.LimitLeads),
	)

	srv := server.New(server.Config{
		PitchPipeline: pitchPipeline,
		LeadPipeline:  leadPipeline,
		OriginGuard:   originGuard,
		Engine:        engine,
		Anonymizer:    anon,
		Recorder:      recorder,
		Stats:         stats,
		Mailer:        mailer,
		MailTo:        cfg.Mail.To,
		MaxBodyBytes:  cfg.Security.MaxBodyBytes,
		Logger:        log,
	})

	mux := srv.Routes()
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Endpoint, promhttp.Handler())
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("portfolio api listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown incomplete")
	}
	// Let in-flight analytics writes drain briefly; best effort only.
	if recorder != nil {
		if err := recorder.Close(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("analytics drain incomplete")
		}
	}
	if rdb != nil {
		rdb.Close()
	}
	log.Info().Msg("bye")
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.Format == "console" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}
