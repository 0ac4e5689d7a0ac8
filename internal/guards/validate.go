package guards

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MarkoKrajceski/marko-sub000/internal/pipeline"
	"github.com/MarkoKrajceski/marko-sub000/internal/sanitize"
)

// LeadValidationGuard parses and validates a contact-form submission. All
// field validators run regardless of earlier failures; the rejection
// carries every problem so the client can show them at once.
type LeadValidationGuard struct{}

func (g *LeadValidationGuard) Name() string  { return "lead_validation" }
func (g *LeadValidationGuard) Priority() int { return 4 }
func (g *LeadValidationGuard) Enabled() bool { return true }

type leadBody struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (g *LeadValidationGuard) Execute(_ context.Context, rc *pipeline.Context) *pipeline.Rejection {
	var body leadBody
	if err := json.Unmarshal(rc.Body, &body); err != nil {
		return malformedBody()
	}

	fields, errs := sanitize.ValidateLeadFields(body.Name, body.Email, body.Message)
	if len(errs) > 0 {
		return invalidFields(errs)
	}
	rc.Lead = &fields
	return nil
}

// PitchValidationGuard parses and validates a pitch request, accepting
// either the enumerated (role, focus) pair or a free-form query.
type PitchValidationGuard struct{}

func (g *PitchValidationGuard) Name() string  { return "pitch_validation" }
func (g *PitchValidationGuard) Priority() int { return 4 }
func (g *PitchValidationGuard) Enabled() bool { return true }

type pitchBody struct {
	Role  string `json:"role"`
	Focus string `json:"focus"`
	Query string `json:"query"`
}

func (g *PitchValidationGuard) Execute(_ context.Context, rc *pipeline.Context) *pipeline.Rejection {
	var body pitchBody
	if err := json.Unmarshal(rc.Body, &body); err != nil {
		return malformedBody()
	}

	fields, errs := sanitize.ValidatePitchFields(body.Role, body.Focus, body.Query)
	if len(errs) > 0 {
		return invalidFields(errs)
	}
	rc.Pitch = &fields
	return nil
}

func malformedBody() *pipeline.Rejection {
	return &pipeline.Rejection{
		Status:  http.StatusBadRequest,
		Code:    pipeline.CodeValidation,
		Message: "request body must be valid JSON",
	}
}

func invalidFields(errs []sanitize.FieldError) *pipeline.Rejection {
	return &pipeline.Rejection{
		Status:  http.StatusBadRequest,
		Code:    pipeline.CodeValidation,
		Message: "one or more fields failed validation",
		Fields:  errs,
	}
}
