package guards

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/MarkoKrajceski/marko-sub000/internal/pipeline"
	"github.com/MarkoKrajceski/marko-sub000/internal/scan"
)

// AttackScanGuard screens the raw decoded payload for known SQL and script
// injection fragments. It runs before field validation so an attack
// signature is still observable in logs even though the request never
// reaches sanitization. The caller only ever sees a generic rejection; the
// matched patterns stay server-side.
type AttackScanGuard struct {
	scanner *scan.Scanner
	log     zerolog.Logger
}

// NewAttackScanGuard creates the guard.
func NewAttackScanGuard(scanner *scan.Scanner, log zerolog.Logger) *AttackScanGuard {
	return &AttackScanGuard{scanner: scanner, log: log}
}

func (g *AttackScanGuard) Name() string  { return "attack_scan" }
func (g *AttackScanGuard) Priority() int { return 3 }
func (g *AttackScanGuard) Enabled() bool { return true }

func (g *AttackScanGuard) Execute(_ context.Context, rc *pipeline.Context) *pipeline.Rejection {
	result := g.scanner.Scan(rc.Body)
	if result.Safe {
		return nil
	}

	g.log.Warn().
		Str("request_id", rc.RequestID).
		Str("client", rc.ClientKey).
		Strs("patterns", result.MatchedPatterns).
		Msg("attack patterns detected in payload")

	return &pipeline.Rejection{
		Status:  http.StatusForbidden,
		Code:    pipeline.CodeSecurity,
		Message: "request rejected for security reasons",
	}
}
