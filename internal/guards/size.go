package guards

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MarkoKrajceski/marko-sub000/internal/pipeline"
)

// BodySizeGuard rejects oversized payloads before any parsing happens.
type BodySizeGuard struct {
	maxBytes int64
}

// NewBodySizeGuard creates a size guard with the given byte limit.
func NewBodySizeGuard(maxBytes int64) *BodySizeGuard {
	return &BodySizeGuard{maxBytes: maxBytes}
}

func (g *BodySizeGuard) Name() string  { return "body_size" }
func (g *BodySizeGuard) Priority() int { return 2 }
func (g *BodySizeGuard) Enabled() bool { return true }

func (g *BodySizeGuard) Execute(_ context.Context, rc *pipeline.Context) *pipeline.Rejection {
	if int64(len(rc.Body)) <= g.maxBytes {
		return nil
	}
	return &pipeline.Rejection{
		Status:  http.StatusRequestEntityTooLarge,
		Code:    pipeline.CodeTooLarge,
		Message: fmt.Sprintf("request body exceeds %d bytes", g.maxBytes),
	}
}
