package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarkoKrajceski/marko-sub000/internal/analytics"
	"github.com/MarkoKrajceski/marko-sub000/internal/anonymize"
	"github.com/MarkoKrajceski/marko-sub000/internal/guards"
	"github.com/MarkoKrajceski/marko-sub000/internal/pipeline"
	"github.com/MarkoKrajceski/marko-sub000/internal/ratelimit"
	"github.com/MarkoKrajceski/marko-sub000/internal/rules"
	"github.com/MarkoKrajceski/marko-sub000/internal/scan"
)

const testOrigin = "https://example.com"

type memStore struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (m *memStore) Put(_ context.Context, e analytics.Event, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memStore) snapshot() []analytics.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]analytics.Event(nil), m.events...)
}

type fakeMailer struct {
	sent chan string
}

func (f *fakeMailer) Send(_ context.Context, to, subject, _, _ string) error {
	f.sent <- to + ": " + subject
	return nil
}

type testEnv struct {
	handler  http.Handler
	store    *memStore
	recorder *analytics.Recorder
	mailer   *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zerolog.Nop()

	store := &memStore{}
	recorder := analytics.NewRecorder(store, analytics.Retention{
		Pitch: 7 * 24 * time.Hour,
		Lead:  30 * 24 * time.Hour,
	}, 64, log)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		recorder.Close(ctx)
	})

	anon := anonymize.New("test-secret")
	limiter := ratelimit.NewSlidingWindow(10, time.Minute)
	originGuard := guards.NewOriginGuard([]string{testOrigin})
	sizeGuard := guards.NewBodySizeGuard(10 * 1024)
	scanGuard := guards.NewAttackScanGuard(scan.NewScanner(), log)
	mailer := &fakeMailer{sent: make(chan string, 8)}

	srv := New(Config{
		PitchPipeline: pipeline.New(log,
			originGuard, sizeGuard, scanGuard,
			&guards.PitchValidationGuard{},
			guards.NewRateLimitGuard(limiter, 60, true),
		),
		LeadPipeline: pipeline.New(log,
			originGuard, sizeGuard, scanGuard,
			&guards.LeadValidationGuard{},
			guards.NewRateLimitGuard(limiter, 60, false),
		),
		OriginGuard:  originGuard,
		Engine:       rules.NewEngine(),
		Anonymizer:   anon,
		Recorder:     recorder,
		Mailer:       mailer,
		MailTo:       "owner@example.com",
		MaxBodyBytes: 10 * 1024,
		Logger:       log,
	})

	return &testEnv{handler: srv.Routes(), store: store, recorder: recorder, mailer: mailer}
}

func (e *testEnv) post(path, body, clientIP string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("User-Agent", "test-agent/1.0")
	if clientIP != "" {
		req.Header.Set("X-Forwarded-For", clientIP)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (e *testEnv) drainEvents(t *testing.T) []analytics.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, e.recorder.Close(ctx))
	return e.store.snapshot()
}

func TestPitchHappyPath(t *testing.T) {
	env := newTestEnv(t)

	w := env.post("/api/pitch", `{"role":"cto","focus":"cloud"}`, "203.0.113.7")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp pitchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Pitch)
	assert.Equal(t, 0.98, resp.Confidence)
	assert.NotEmpty(t, resp.RequestID)
	assert.NotEmpty(t, resp.Timestamp)

	events := env.drainEvents(t)
	require.Len(t, events, 1)
	pitch := events[0].(analytics.PitchEvent)
	assert.Equal(t, resp.RequestID, pitch.RequestID)
	assert.Equal(t, "cto", pitch.Role)
	assert.NotContains(t, pitch.IPHash, "203.0.113.7")
}

func TestPitchFreeFormQuery(t *testing.T) {
	env := newTestEnv(t)

	w := env.post("/api/pitch", `{"query":"tell me about your cloud experience"}`, "203.0.113.8")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp pitchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Pitch)
	assert.Greater(t, resp.Confidence, 0.0)
}

func TestLeadValidationAggregatesErrors(t *testing.T) {
	env := newTestEnv(t)

	w := env.post("/api/lead", `{"name":"A","email":"bad","message":"short"}`, "203.0.113.9")
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeError(t, w)
	assert.True(t, resp.Error)
	assert.Equal(t, pipeline.CodeValidation, resp.Code)
	assert.Len(t, resp.Details, 3, "all field errors must be reported at once")

	assert.Empty(t, env.drainEvents(t), "rejected requests are never recorded")
}

func TestLeadHappyPath(t *testing.T) {
	env := newTestEnv(t)

	w := env.post("/api/lead", `{"name":"Ada Lovelace","email":"ada@example.com","message":"I would like to discuss a contract."}`, "203.0.113.10")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp leadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)

	select {
	case sent := <-env.mailer.sent:
		assert.Contains(t, sent, "owner@example.com")
	case <-time.After(time.Second):
		t.Fatal("lead notification was never dispatched")
	}

	events := env.drainEvents(t)
	require.Len(t, events, 1)
	lead := events[0].(analytics.LeadEvent)
	assert.Equal(t, "ada@example.com", lead.Email)
}

func TestPitchRateLimit(t *testing.T) {
	env := newTestEnv(t)

	const ip = "203.0.113.11"
	for i := 0; i < 10; i++ {
		w := env.post("/api/pitch", `{"role":"founder","focus":"ai"}`, ip)
		require.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := env.post("/api/pitch", `{"role":"founder","focus":"ai"}`, ip)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, pipeline.CodeRateLimit, resp.Code)
	assert.Equal(t, 60, resp.RetryAfter)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// A different client is unaffected.
	w = env.post("/api/pitch", `{"role":"founder","focus":"ai"}`, "203.0.113.12")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityViolationShortCircuits(t *testing.T) {
	env := newTestEnv(t)

	w := env.post("/api/pitch", `{"role":"cto","focus":"cloud","query":"1=1 OR drop table users"}`, "203.0.113.13")
	require.Equal(t, http.StatusForbidden, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, pipeline.CodeSecurity, resp.Code)
	assert.NotContains(t, w.Body.String(), "drop table", "matched patterns stay server-side")

	assert.Empty(t, env.drainEvents(t), "the request never reaches the rule engine or analytics")
}

func TestMissingOriginFailsClosed(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/pitch", strings.NewReader(`{"role":"cto","focus":"cloud"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, pipeline.CodeCSRF, decodeError(t, w).Code)
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/pitch", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, pipeline.CodeMethodNotAllowed, resp.Code)
	assert.NotEmpty(t, resp.RequestID)
}

func TestRequestTooLarge(t *testing.T) {
	env := newTestEnv(t)

	big := `{"role":"cto","focus":"cloud","query":"` + strings.Repeat("x", 11*1024) + `"}`
	w := env.post("/api/pitch", big, "203.0.113.14")

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, pipeline.CodeTooLarge, decodeError(t, w).Code)
}

func TestMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	w := env.post("/api/pitch", `{not json`, "203.0.113.15")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, pipeline.CodeValidation, decodeError(t, w).Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/pitch", nil)
	req.Header.Set("Origin", testOrigin)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/pitch", nil)
	req.Header.Set("Origin", "https://evil.com")
	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
