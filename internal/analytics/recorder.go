// Package analytics records anonymized usage events with a fixed retention
// window. Recording is fire-and-forget: events are queued onto a bounded
// channel drained by one background worker, and every failure past that
// point is logged and swallowed. A broken analytics path must never become
// a user-visible error or add latency to a response.
package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MarkoKrajceski/marko-sub000/internal/metrics"
)

// Store abstracts the key-value store consumed by the recorder.
type Store interface {
	// Put persists an event with a time-to-live after which the store
	// removes it on its own.
	Put(ctx context.Context, e Event, ttl time.Duration) error
}

// Retention windows by event kind.
type Retention struct {
	Pitch time.Duration
	Lead  time.Duration
}

// Recorder queues events for background persistence.
type Recorder struct {
	store     Store
	retention Retention
	log       zerolog.Logger

	queue     chan queuedEvent
	done      chan struct{}
	closeOnce sync.Once
}

type queuedEvent struct {
	event Event
	ttl   time.Duration
}

// NewRecorder starts a recorder with the given queue capacity and spawns
// its worker.
func NewRecorder(store Store, retention Retention, bufferSize int, log zerolog.Logger) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	r := &Recorder{
		store:     store,
		retention: retention,
		log:       log,
		queue:     make(chan queuedEvent, bufferSize),
		done:      make(chan struct{}),
	}
	go r.worker()
	return r
}

// RecordPitch stamps and enqueues a pitch event. Never blocks: when the
// queue is full the event is dropped and counted.
func (r *Recorder) RecordPitch(e PitchEvent) {
	now := time.Now().UTC()
	e.Timestamp = now
	e.ExpiresAt = now.Add(r.retention.Pitch)
	r.enqueue(queuedEvent{event: e, ttl: r.retention.Pitch})
}

// RecordLead stamps and enqueues a lead event.
func (r *Recorder) RecordLead(e LeadEvent) {
	now := time.Now().UTC()
	if e.LeadID == "" {
		e.LeadID = uuid.New().String()
	}
	e.Timestamp = now
	e.ExpiresAt = now.Add(r.retention.Lead)
	r.enqueue(queuedEvent{event: e, ttl: r.retention.Lead})
}

func (r *Recorder) enqueue(q queuedEvent) {
	select {
	case r.queue <- q:
	default:
		metrics.AnalyticsDropped.Inc()
		r.log.Warn().Str("kind", q.event.Kind()).Msg("analytics queue full, event dropped")
	}
}

func (r *Recorder) worker() {
	defer close(r.done)
	for q := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.store.Put(ctx, q.event, q.ttl); err != nil {
			r.log.Warn().Err(err).Str("kind", q.event.Kind()).Msg("analytics write failed")
		}
		cancel()
	}
}

// Close stops accepting events and lets the worker drain briefly. Callers
// must stop recording before Close; the HTTP server is shut down first in
// main, which guarantees that. Safe to call more than once.
func (r *Recorder) Close(ctx context.Context) error {
	r.closeOnce.Do(func() { close(r.queue) })
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
