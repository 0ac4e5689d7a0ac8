// Package anonymize provides one-way transformations of client identifiers.
// Nothing in this package ever returns its input: IPs are salted-hashed
// with a daily-rotating salt and user agents keep only a bounded prefix
// plus a digest. Both functions are total; absent input maps to "unknown".
package anonymize

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// hashLen is the number of hex characters kept from the digest. 64 bits of
// hash is plenty for same-day bucketing and keeps stored keys short.
const hashLen = 16

// uaPrefixLen bounds how much of the raw user agent is kept for debugging.
const uaPrefixLen = 32

// Unknown is the marker returned for absent identifiers.
const Unknown = "unknown"

// Anonymizer derives anonymized client identifiers. The secret seeds the
// daily IP salt; nowFn is injectable for tests.
type Anonymizer struct {
	secret string
	nowFn  func() time.Time
}

// New creates an Anonymizer seeded with the given secret.
func New(secret string) *Anonymizer {
	return &Anonymizer{secret: secret, nowFn: time.Now}
}

// Hash returns the first 16 hex characters of SHA-256(value + salt).
func Hash(value, salt string) string {
	sum := sha256.Sum256([]byte(value + salt))
	return hex.EncodeToString(sum[:])[:hashLen]
}

// dailySalt rotates the salt at UTC midnight. The same IP therefore hashes
// identically within a day (enabling rate-limit bucketing) and differently
// across days (preventing long-term correlation).
func (a *Anonymizer) dailySalt() string {
	return a.secret + a.nowFn().UTC().Format("2006-01-02")
}

// ClientIP anonymizes a client IP with the current daily salt.
func (a *Anonymizer) ClientIP(ip string) string {
	if ip == "" {
		return Unknown
	}
	return Hash(ip, a.dailySalt())
}

// UserAgent anonymizes a user agent as a bounded raw prefix joined with an
// unsalted digest of the full string. The prefix gives coarse debugging
// context; the digest allows exact-match grouping without storing the
// literal value.
func (a *Anonymizer) UserAgent(ua string) string {
	if ua == "" {
		return Unknown
	}
	prefix := ua
	if len(prefix) > uaPrefixLen {
		prefix = prefix[:uaPrefixLen]
	}
	return prefix + "#" + Hash(ua, "")
}
