// Package sanitize provides string cleaning and field-level validation for
// inbound form data. Sanitize is deliberately destructive: anything that
// looks like markup or script plumbing is removed rather than escaped,
// because none of the accepted fields legitimately contain it.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	scriptRe  = regexp.MustCompile(`(?i)script`)
	jsProtoRe = regexp.MustCompile(`(?i)javascript:`)
	handlerRe = regexp.MustCompile(`(?i)\bon\w+\s*=`)
	quotesRe  = regexp.MustCompile("[\"'`]")
	emailRe   = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
)

// Sanitize strips markup and script fragments from raw, trims whitespace,
// and truncates to maxLength. It is a pure function and idempotent:
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(raw string, maxLength int) string {
	// Any removal can splice a new forbidden fragment together (e.g.
	// "scrscriptipt" loses its inner "script" and becomes "script"), so
	// the whole cleaning pass repeats until the string stops changing.
	s := raw
	for {
		next := strings.ReplaceAll(s, "<", "")
		next = strings.ReplaceAll(next, ">", "")
		next = quotesRe.ReplaceAllString(next, "")
		next = jsProtoRe.ReplaceAllString(next, "")
		next = scriptRe.ReplaceAllString(next, "")
		next = handlerRe.ReplaceAllString(next, "")
		if next == s {
			break
		}
		s = next
	}
	s = strings.TrimSpace(s)

	if maxLength > 0 && len(s) > maxLength {
		s = strings.TrimSpace(s[:maxLength])
	}
	return s
}

// Email sanitizes and validates an email address. It lower-cases and trims
// the input, then checks a conservative local@domain.tld shape. The second
// return value is false when the input is not an acceptable address; no
// error is returned so callers can aggregate failures across fields.
func Email(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || len(s) > 254 {
		return "", false
	}
	if strings.ContainsAny(s, "<>") || strings.Contains(s, "script") {
		return "", false
	}
	if !emailRe.MatchString(s) {
		return "", false
	}
	return s, true
}
