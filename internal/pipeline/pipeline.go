// Package pipeline orchestrates the per-request guard chain: origin check,
// size check, attack-pattern scan, field validation, and rate limiting.
// Guards run in priority order and the first failure short-circuits the
// request; there is no retry or backtracking, each request makes one pass.
package pipeline

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
)

// Guard is one screening stage of the request pipeline.
type Guard interface {
	// Name identifies the guard in logs.
	Name() string

	// Priority orders execution (lower = earlier).
	Priority() int

	// Enabled reports whether the guard participates in the chain.
	Enabled() bool

	// Execute screens the request. A nil return admits the request to the
	// next stage; a non-nil Rejection ends processing.
	Execute(ctx context.Context, rc *Context) *Rejection
}

// Pipeline executes a fixed chain of guards for every inbound request.
type Pipeline struct {
	guards []Guard
	log    zerolog.Logger
}

// New builds a pipeline from the given guards, dropping disabled ones and
// sorting the rest by priority.
func New(log zerolog.Logger, guards ...Guard) *Pipeline {
	active := make([]Guard, 0, len(guards))
	for _, g := range guards {
		if g.Enabled() {
			active = append(active, g)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].Priority() < active[j].Priority()
	})
	return &Pipeline{guards: active, log: log}
}

// Run executes the chain. The returned Rejection is nil when every guard
// passed. Rejections log one concise structured line; the anonymized client
// key is the only client identifier that reaches the log.
func (p *Pipeline) Run(ctx context.Context, rc *Context) *Rejection {
	for _, g := range p.guards {
		rej := g.Execute(ctx, rc)
		if rej == nil {
			continue
		}
		p.log.Info().
			Str("request_id", rc.RequestID).
			Str("guard", g.Name()).
			Str("code", rej.Code).
			Str("client", rc.ClientKey).
			Str("path", rc.Path).
			Msg("request rejected")
		return rej
	}
	return nil
}
