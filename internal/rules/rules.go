// Package rules holds the static pitch-generation table. Generation is a
// pure lookup keyed by (role, focus); there is no randomness and no external
// call, so identical inputs always produce identical outputs.
package rules

import (
	"fmt"
	"strings"
)

// Role identifies who is asking for a pitch.
type Role string

// Focus identifies which area of work the pitch should emphasize.
type Focus string

const (
	RoleRecruiter Role = "recruiter"
	RoleCTO       Role = "cto"
	RoleProduct   Role = "product"
	RoleFounder   Role = "founder"
	RoleOther     Role = "other"
)

const (
	FocusAI         Focus = "ai"
	FocusCloud      Focus = "cloud"
	FocusAutomation Focus = "automation"
)

// Roles enumerates every accepted role value.
func Roles() []Role {
	return []Role{RoleRecruiter, RoleCTO, RoleProduct, RoleFounder, RoleOther}
}

// Focuses enumerates every accepted focus value.
func Focuses() []Focus {
	return []Focus{FocusAI, FocusCloud, FocusAutomation}
}

// ParseRole maps a raw string onto a Role. The boolean is false for values
// outside the accepted set.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleRecruiter:
		return RoleRecruiter, true
	case RoleCTO:
		return RoleCTO, true
	case RoleProduct:
		return RoleProduct, true
	case RoleFounder:
		return RoleFounder, true
	case RoleOther:
		return RoleOther, true
	}
	return "", false
}

// ParseFocus maps a raw string onto a Focus.
func ParseFocus(raw string) (Focus, bool) {
	switch Focus(strings.ToLower(strings.TrimSpace(raw))) {
	case FocusAI:
		return FocusAI, true
	case FocusCloud:
		return FocusCloud, true
	case FocusAutomation:
		return FocusAutomation, true
	}
	return "", false
}

// FocusFromQuery maps a free-form query onto the closest focus by keyword.
// Unrecognized queries fall back to FocusAI.
func FocusFromQuery(query string) Focus {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, "cloud", "aws", "serverless", "infrastructure", "devops", "kubernetes"):
		return FocusCloud
	case containsAny(q, "automation", "automate", "workflow", "pipeline", "ci/cd", "integration"):
		return FocusAutomation
	default:
		return FocusAI
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Pitch is one entry of the generation table.
type Pitch struct {
	Text       string
	Confidence float64
}

// Engine resolves (role, focus) pairs against the static table.
type Engine struct {
	table map[Role]map[Focus]Pitch
}

// ErrRuleNotFound indicates a (role, focus) pair without a table entry.
// Upstream validation only admits enumerated pairs, so reaching this is a
// configuration defect, not a caller mistake.
var ErrRuleNotFound = fmt.Errorf("pitch rule not found")

// NewEngine builds the engine over the built-in table.
func NewEngine() *Engine {
	return &Engine{table: pitchTable}
}

// Generate returns the pitch for the given pair. Identical inputs always
// yield identical outputs.
func (e *Engine) Generate(role Role, focus Focus) (Pitch, error) {
	byFocus, ok := e.table[role]
	if !ok {
		return Pitch{}, fmt.Errorf("%w: role %q", ErrRuleNotFound, role)
	}
	p, ok := byFocus[focus]
	if !ok {
		return Pitch{}, fmt.Errorf("%w: role %q focus %q", ErrRuleNotFound, role, focus)
	}
	return p, nil
}

var pitchTable = map[Role]map[Focus]Pitch{
	RoleRecruiter: {
		FocusAI:         {Text: "Marko ships production AI features end to end: LLM-backed APIs, retrieval pipelines, and the evaluation harnesses that keep them honest. He is the engineer you hire when the demo needs to become a product.", Confidence: 0.95},
		FocusCloud:      {Text: "Marko has spent years running serverless workloads on managed cloud platforms: functions, key-value stores, queues, and the IaC that holds them together. He designs for cost and cold-start latency, not just for the happy path.", Confidence: 0.94},
		FocusAutomation: {Text: "Marko automates the boring parts: CI/CD pipelines, data syncs, and back-office workflows that used to eat whole afternoons. Teams he joins ship more often with fewer pager incidents.", Confidence: 0.92},
	},
	RoleCTO: {
		FocusAI:         {Text: "Marko brings pragmatic AI engineering: he picks the smallest model that solves the problem, wraps it in observable infrastructure, and measures outcomes instead of vibes. No science projects on your roadmap.", Confidence: 0.96},
		FocusCloud:      {Text: "Marko designs cloud architectures that a small team can actually operate: managed services first, sharp interfaces between components, and failure modes decided up front. Your infrastructure bill and your on-call rotation both shrink.", Confidence: 0.98},
		FocusAutomation: {Text: "Marko turns manual runbooks into tested automation. He has built deployment pipelines, self-healing jobs, and integration glue that removed entire categories of toil from engineering teams.", Confidence: 0.93},
	},
	RoleProduct: {
		FocusAI:         {Text: "Marko partners well with product: he prototypes AI features in days, instruments them properly, and is honest about what the model can and cannot do before anything ships to users.", Confidence: 0.91},
		FocusCloud:      {Text: "Marko builds backends that keep up with product iteration: serverless APIs that scale to zero, feature-flagged rollouts, and telemetry that answers product questions, not just ops questions.", Confidence: 0.9},
		FocusAutomation: {Text: "Marko automates the workflows around your product: onboarding emails, data enrichment, reporting. The result is a team that spends its time on the product instead of on spreadsheets.", Confidence: 0.89},
	},
	RoleFounder: {
		FocusAI:         {Text: "Marko is a strong early hire for an AI-flavored startup: he moves fast, owns the stack from prompt to production, and knows which corners are safe to cut before product-market fit.", Confidence: 0.94},
		FocusCloud:      {Text: "Marko keeps early-stage infrastructure cheap and boring: managed services, a deploy that takes minutes, and zero servers to babysit at 3 a.m. Runway goes to the product, not the cloud bill.", Confidence: 0.93},
		FocusAutomation: {Text: "Marko gives a founding team leverage: every repetitive process he touches becomes a script, a pipeline, or a bot. One engineer, several engineers' worth of output.", Confidence: 0.91},
	},
	RoleOther: {
		FocusAI:         {Text: "Marko is a full-stack engineer with deep experience in applied AI: language-model integrations, data pipelines, and the product thinking to make them useful.", Confidence: 0.85},
		FocusCloud:      {Text: "Marko is a full-stack engineer specializing in serverless cloud architecture: managed functions, key-value storage, and systems designed to be operated by very small teams.", Confidence: 0.85},
		FocusAutomation: {Text: "Marko is a full-stack engineer who automates things: CI/CD, integrations, and workflow tooling that lets teams focus on the work only humans can do.", Confidence: 0.85},
	},
}
