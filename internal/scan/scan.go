// Package scan screens raw request payloads for known attack signatures.
// It runs before sanitization so that an attack fragment in a rejected
// request is still visible to server-side logging.
package scan

import "strings"

// SQL-injection fragments. Coarse by intent: this is defense in depth on
// top of a store that is never queried with raw strings.
var sqlPatterns = []string{
	"union select",
	"drop table",
	"insert into",
	"delete from",
	"truncate table",
	"1=1",
	"' or '",
	"; drop",
	"exec(",
	"xp_cmdshell",
	"information_schema",
}

// Script-injection fragments.
var scriptPatterns = []string{
	"<script",
	"javascript:",
	"onerror=",
	"onload=",
	"onclick=",
	"eval(",
	"document.cookie",
	"<iframe",
	"base64,",
	"srcdoc=",
}

// Result is the outcome of a payload scan. MatchedPatterns is kept for
// logging only and is never returned to the caller of the API; rejected
// requests get a generic security error.
type Result struct {
	Safe            bool
	MatchedPatterns []string
}

// Scanner tests payloads against the static pattern lists.
type Scanner struct {
	patterns []string
}

// NewScanner builds a scanner over the built-in SQL and script fragments.
func NewScanner() *Scanner {
	patterns := make([]string, 0, len(sqlPatterns)+len(scriptPatterns))
	patterns = append(patterns, sqlPatterns...)
	patterns = append(patterns, scriptPatterns...)
	return &Scanner{patterns: patterns}
}

// Scan lower-cases the raw payload and substring-tests every pattern.
// All matches are collected, not just the first.
func (s *Scanner) Scan(payload []byte) Result {
	body := strings.ToLower(string(payload))

	var matched []string
	for _, p := range s.patterns {
		if strings.Contains(body, p) {
			matched = append(matched, p)
		}
	}

	return Result{Safe: len(matched) == 0, MatchedPatterns: matched}
}
