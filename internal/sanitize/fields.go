package sanitize

import (
	"fmt"

	"github.com/MarkoKrajceski/marko-sub000/internal/rules"
)

// Field length bounds. Maximums are enforced by truncation inside Sanitize;
// minimums reject.
const (
	NameMinLen    = 2
	NameMaxLen    = 100
	MessageMinLen = 10
	MessageMaxLen = 2000
	QueryMinLen   = 1
	QueryMaxLen   = 1000
)

// Field error codes, stable strings clients can branch on.
const (
	CodeInvalidLength = "INVALID_LENGTH"
	CodeInvalidEmail  = "INVALID_EMAIL"
	CodeInvalidValue  = "INVALID_VALUE"
	CodeMissingField  = "MISSING_FIELD"
)

// FieldError describes a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// LeadFields is the sanitized payload of a contact-form submission.
type LeadFields struct {
	Name    string
	Email   string
	Message string
}

// PitchFields is the sanitized payload of a pitch request. Query is empty
// when the caller used the role/focus form.
type PitchFields struct {
	Role  rules.Role
	Focus rules.Focus
	Query string
}

// ValidateLeadFields sanitizes and validates a lead submission. Every
// validator runs regardless of earlier failures so the caller can report
// all problems at once; the fields value is only meaningful when the
// returned slice is empty.
func ValidateLeadFields(name, email, message string) (LeadFields, []FieldError) {
	var errs []FieldError

	cleanName := Sanitize(name, NameMaxLen)
	if len(cleanName) < NameMinLen {
		errs = append(errs, FieldError{
			Field:   "name",
			Message: fmt.Sprintf("name must be between %d and %d characters", NameMinLen, NameMaxLen),
			Code:    CodeInvalidLength,
		})
	}

	cleanEmail, ok := Email(email)
	if !ok {
		errs = append(errs, FieldError{
			Field:   "email",
			Message: "a valid email address is required",
			Code:    CodeInvalidEmail,
		})
	}

	cleanMessage := Sanitize(message, MessageMaxLen)
	if len(cleanMessage) < MessageMinLen {
		errs = append(errs, FieldError{
			Field:   "message",
			Message: fmt.Sprintf("message must be between %d and %d characters", MessageMinLen, MessageMaxLen),
			Code:    CodeInvalidLength,
		})
	}

	if len(errs) > 0 {
		return LeadFields{}, errs
	}
	return LeadFields{Name: cleanName, Email: cleanEmail, Message: cleanMessage}, nil
}

// ValidatePitchFields sanitizes and validates a pitch request. Two request
// shapes are accepted: an enumerated (role, focus) pair, or a free-form
// query which is mapped onto a focus by keyword with role defaulting to
// "other". When both shapes are present the enumerated pair wins.
func ValidatePitchFields(role, focus, query string) (PitchFields, []FieldError) {
	var errs []FieldError

	cleanQuery := Sanitize(query, QueryMaxLen)

	if role == "" && focus == "" {
		if len(cleanQuery) < QueryMinLen {
			errs = append(errs, FieldError{
				Field:   "query",
				Message: "either role and focus, or a non-empty query, is required",
				Code:    CodeMissingField,
			})
			return PitchFields{}, errs
		}
		return PitchFields{
			Role:  rules.RoleOther,
			Focus: rules.FocusFromQuery(cleanQuery),
			Query: cleanQuery,
		}, nil
	}

	parsedRole, ok := rules.ParseRole(role)
	if !ok {
		errs = append(errs, FieldError{
			Field:   "role",
			Message: "role must be one of: recruiter, cto, product, founder, other",
			Code:    CodeInvalidValue,
		})
	}

	parsedFocus, ok := rules.ParseFocus(focus)
	if !ok {
		errs = append(errs, FieldError{
			Field:   "focus",
			Message: "focus must be one of: ai, cloud, automation",
			Code:    CodeInvalidValue,
		})
	}

	if len(errs) > 0 {
		return PitchFields{}, errs
	}
	return PitchFields{Role: parsedRole, Focus: parsedFocus, Query: cleanQuery}, nil
}
