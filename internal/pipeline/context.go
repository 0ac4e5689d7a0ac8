package pipeline

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MarkoKrajceski/marko-sub000/internal/anonymize"
	"github.com/MarkoKrajceski/marko-sub000/internal/sanitize"
)

// Stable rejection codes clients branch on programmatically.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeCSRF             = "CSRF_PROTECTION"
	CodeSecurity         = "SECURITY_VIOLATION"
	CodeRateLimit        = "RATE_LIMIT_EXCEEDED"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeTooLarge         = "REQUEST_TOO_LARGE"
	CodeInternal         = "INTERNAL_ERROR"
)

// Rejection is the outcome of a failed guard. It is a value, not an error:
// every rejection maps onto a well-defined HTTP response.
type Rejection struct {
	Status     int
	Code       string
	Message    string
	RetryAfter int                   // seconds; set only for rate-limit rejections
	Fields     []sanitize.FieldError // set only for validation rejections
}

// Context carries one request through the guard chain. It is built once per
// request and never shared across requests.
type Context struct {
	RequestID string
	Timestamp time.Time

	Method string
	Path   string
	Header http.Header
	Body   []byte

	ClientIP  string
	UserAgent string

	// Anonymized identifiers, computed once and reused by the rate limiter
	// and the analytics path. The raw IP never travels past this struct.
	ClientKey string
	UAHash    string

	// Sanitized payloads, populated by the validation guard. Exactly one is
	// non-nil for a request that passed validation.
	Lead  *sanitize.LeadFields
	Pitch *sanitize.PitchFields
}

// NewContext builds a request context. The body has already been read and
// length-capped by the handler.
func NewContext(r *http.Request, body []byte, anon *anonymize.Anonymizer) *Context {
	ip := clientIP(r)
	ua := r.UserAgent()

	return &Context{
		RequestID: uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Method:    r.Method,
		Path:      r.URL.Path,
		Header:    r.Header,
		Body:      body,
		ClientIP:  ip,
		UserAgent: ua,
		ClientKey: anon.ClientIP(ip),
		UAHash:    anon.UserAgent(ua),
	}
}

// clientIP prefers the first X-Forwarded-For hop (the platform's LB appends
// to it), falling back to the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
