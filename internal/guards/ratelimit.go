package guards

import (
	"context"
	"net/http"

	"github.com/MarkoKrajceski/marko-sub000/internal/pipeline"
	"github.com/MarkoKrajceski/marko-sub000/internal/ratelimit"
)

// RateLimitGuard applies sliding-window admission control keyed by the
// anonymized client identity. It runs after validation so malformed
// requests never consume window slots.
type RateLimitGuard struct {
	limiter    ratelimit.Limiter
	retryAfter int
	enabled    bool
}

// NewRateLimitGuard creates the guard. retryAfter is advertised to rejected
// clients and should equal the configured window in seconds.
func NewRateLimitGuard(limiter ratelimit.Limiter, retryAfter int, enabled bool) *RateLimitGuard {
	return &RateLimitGuard{limiter: limiter, retryAfter: retryAfter, enabled: enabled}
}

func (g *RateLimitGuard) Name() string  { return "rate_limit" }
func (g *RateLimitGuard) Priority() int { return 5 }
func (g *RateLimitGuard) Enabled() bool { return g.enabled }

func (g *RateLimitGuard) Execute(ctx context.Context, rc *pipeline.Context) *pipeline.Rejection {
	if g.limiter.Admit(ctx, rc.ClientKey) {
		return nil
	}
	return &pipeline.Rejection{
		Status:     http.StatusTooManyRequests,
		Code:       pipeline.CodeRateLimit,
		Message:    "too many requests, slow down",
		RetryAfter: g.retryAfter,
	}
}
