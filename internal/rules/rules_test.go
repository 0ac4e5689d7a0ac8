package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCoversEveryPair(t *testing.T) {
	engine := NewEngine()

	for _, role := range Roles() {
		for _, focus := range Focuses() {
			p, err := engine.Generate(role, focus)
			require.NoError(t, err, "missing rule for (%s, %s)", role, focus)
			assert.NotEmpty(t, p.Text, "(%s, %s) has empty pitch", role, focus)
			assert.Greater(t, p.Confidence, 0.0)
			assert.LessOrEqual(t, p.Confidence, 1.0)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	engine := NewEngine()
	first, err := engine.Generate(RoleCTO, FocusCloud)
	require.NoError(t, err)
	second, err := engine.Generate(RoleCTO, FocusCloud)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 0.98, first.Confidence)
}

func TestGenerateUnknownPair(t *testing.T) {
	_, err := NewEngine().Generate(Role("alien"), FocusAI)
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input  string
		want   Role
		wantOK bool
	}{
		{"cto", RoleCTO, true},
		{" CTO ", RoleCTO, true},
		{"recruiter", RoleRecruiter, true},
		{"wizard", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFocusFromQuery(t *testing.T) {
	tests := []struct {
		query string
		want  Focus
	}{
		{"tell me about AWS and serverless", FocusCloud},
		{"can you automate my workflow", FocusAutomation},
		{"experience with language models", FocusAI},
		{"", FocusAI},
	}
	for _, tt := range tests {
		if got := FocusFromQuery(tt.query); got != tt.want {
			t.Errorf("FocusFromQuery(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}
