// Package guards contains the concrete pipeline stages. Each guard wraps
// one screening concern and plugs into the chain via the pipeline.Guard
// interface, one file per guard.
package guards

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/MarkoKrajceski/marko-sub000/internal/pipeline"
)

// OriginGuard rejects state-mutating requests whose Origin (or, failing
// that, Referer) does not match the allow-list. A mutating request carrying
// neither header is rejected: fail closed, never open, even though that
// adds friction for clients that strip the headers.
type OriginGuard struct {
	allowed map[string]bool
}

// NewOriginGuard normalizes the allow-list entries to scheme://host form.
func NewOriginGuard(allowList []string) *OriginGuard {
	allowed := make(map[string]bool, len(allowList))
	for _, entry := range allowList {
		if norm, ok := normalizeOrigin(entry); ok {
			allowed[norm] = true
		}
	}
	return &OriginGuard{allowed: allowed}
}

func (g *OriginGuard) Name() string  { return "origin" }
func (g *OriginGuard) Priority() int { return 1 }
func (g *OriginGuard) Enabled() bool { return true }

// Execute applies the origin check to mutating methods only.
func (g *OriginGuard) Execute(_ context.Context, rc *pipeline.Context) *pipeline.Rejection {
	if !mutates(rc.Method) {
		return nil
	}

	header := rc.Header.Get("Origin")
	if header == "" {
		header = rc.Header.Get("Referer")
	}
	if header != "" {
		if norm, ok := normalizeOrigin(header); ok && g.allowed[norm] {
			return nil
		}
	}

	return &pipeline.Rejection{
		Status:  http.StatusForbidden,
		Code:    pipeline.CodeCSRF,
		Message: "request origin is not allowed",
	}
}

// Allowed reports whether a raw Origin header value is on the allow-list.
// The CORS layer shares the list with the guard.
func (g *OriginGuard) Allowed(origin string) bool {
	norm, ok := normalizeOrigin(origin)
	return ok && g.allowed[norm]
}

func mutates(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// normalizeOrigin reduces an Origin or Referer value to lower-case
// scheme://host[:port].
func normalizeOrigin(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), true
}
