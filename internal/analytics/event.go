package analytics

import "time"

// Event kinds, also used as storage partitions.
const (
	KindPitch = "pitch"
	KindLead  = "lead"
)

// Event is an analytics record bound for the key-value store. Events are
// created once per accepted request and never mutated; physical removal is
// the store's TTL mechanism, not application code.
type Event interface {
	// Kind returns the event's storage partition.
	Kind() string
	// ID returns a unique identifier used in the storage key.
	ID() string
}

// PitchEvent records one generated pitch. Client identifiers are already
// anonymized before the event is built.
type PitchEvent struct {
	RequestID  string    `json:"requestId"`
	Role       string    `json:"role"`
	Focus      string    `json:"focus"`
	Query      string    `json:"query,omitempty"`
	IPHash     string    `json:"ipHash"`
	UAHash     string    `json:"uaHash"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

func (e PitchEvent) Kind() string { return KindPitch }
func (e PitchEvent) ID() string   { return e.RequestID }

// LeadEvent records one captured contact-form submission.
type LeadEvent struct {
	LeadID    string    `json:"leadId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (e LeadEvent) Kind() string { return KindLead }
func (e LeadEvent) ID() string   { return e.LeadID }
