package guards

import (
	"context"
	"net/http"
	"testing"

	"github.com/MarkoKrajceski/marko-sub000/internal/pipeline"
)

func newRC(method string, headers map[string]string) *pipeline.Context {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &pipeline.Context{Method: method, Header: h}
}

func TestOriginGuard(t *testing.T) {
	g := NewOriginGuard([]string{"https://example.com", "http://localhost:3000"})

	tests := []struct {
		name    string
		method  string
		headers map[string]string
		allowed bool
	}{
		{"allowed origin", "POST", map[string]string{"Origin": "https://example.com"}, true},
		{"origin with path still matches host", "POST", map[string]string{"Origin": "https://example.com/page"}, true},
		{"disallowed origin", "POST", map[string]string{"Origin": "https://evil.com"}, false},
		{"referer fallback", "POST", map[string]string{"Referer": "https://example.com/contact"}, true},
		{"disallowed referer", "POST", map[string]string{"Referer": "https://evil.com/x"}, false},
		{"no headers fails closed", "POST", nil, false},
		{"get skips the check", "GET", nil, true},
		{"localhost with port", "POST", map[string]string{"Origin": "http://localhost:3000"}, true},
		{"scheme mismatch", "POST", map[string]string{"Origin": "https://localhost:3000"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rej := g.Execute(context.Background(), newRC(tt.method, tt.headers))
			if tt.allowed && rej != nil {
				t.Errorf("expected pass, got rejection %+v", rej)
			}
			if !tt.allowed {
				if rej == nil {
					t.Fatal("expected rejection, got pass")
				}
				if rej.Code != pipeline.CodeCSRF {
					t.Errorf("expected code %s, got %s", pipeline.CodeCSRF, rej.Code)
				}
			}
		})
	}
}
