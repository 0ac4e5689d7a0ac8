package pipeline

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGuard struct {
	name     string
	priority int
	enabled  bool
	reject   *Rejection
	calls    *[]string
}

func (g *stubGuard) Name() string  { return g.name }
func (g *stubGuard) Priority() int { return g.priority }
func (g *stubGuard) Enabled() bool { return g.enabled }
func (g *stubGuard) Execute(_ context.Context, _ *Context) *Rejection {
	*g.calls = append(*g.calls, g.name)
	return g.reject
}

func TestPipelineRunsGuardsInPriorityOrder(t *testing.T) {
	var calls []string
	p := New(zerolog.Nop(),
		&stubGuard{name: "third", priority: 3, enabled: true, calls: &calls},
		&stubGuard{name: "first", priority: 1, enabled: true, calls: &calls},
		&stubGuard{name: "second", priority: 2, enabled: true, calls: &calls},
	)

	rej := p.Run(context.Background(), &Context{})
	require.Nil(t, rej)
	assert.Equal(t, []string{"first", "second", "third"}, calls)
}

func TestPipelineShortCircuitsOnFirstRejection(t *testing.T) {
	var calls []string
	blocked := &Rejection{Status: http.StatusForbidden, Code: CodeSecurity, Message: "no"}
	p := New(zerolog.Nop(),
		&stubGuard{name: "pass", priority: 1, enabled: true, calls: &calls},
		&stubGuard{name: "block", priority: 2, enabled: true, reject: blocked, calls: &calls},
		&stubGuard{name: "never", priority: 3, enabled: true, calls: &calls},
	)

	rej := p.Run(context.Background(), &Context{})
	require.NotNil(t, rej)
	assert.Equal(t, CodeSecurity, rej.Code)
	assert.Equal(t, []string{"pass", "block"}, calls, "guards after the failure must not run")
}

func TestPipelineSkipsDisabledGuards(t *testing.T) {
	var calls []string
	p := New(zerolog.Nop(),
		&stubGuard{name: "on", priority: 1, enabled: true, calls: &calls},
		&stubGuard{name: "off", priority: 2, enabled: false, reject: &Rejection{}, calls: &calls},
	)

	require.Nil(t, p.Run(context.Background(), &Context{}))
	assert.Equal(t, []string{"on"}, calls)
}
