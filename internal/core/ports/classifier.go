package ports

import (
	"context"

	"github.com/kestrelhq/botgate/internal/core/domain"
)

// ClassifyInput is what the complexity classifier sees: the latest user
// message, up to 200 chars of the preceding non-user message, and whether
// the request carries tool calls.
type ClassifyInput struct {
	Message  string
	Context  string
	HasTools bool
}

// ClassifyResult is the classifier's verdict for one request.
type ClassifyResult struct {
	Level                domain.ComplexityLevel
	LatencyMs            int64
	InheritedFromContext bool
}

// ComplexityClassifier is the external classification collaborator. A nil or
// erroring classifier must never fail the request; the selector falls back to
// capability-only routing.
type ComplexityClassifier interface {
	Classify(ctx context.Context, in ClassifyInput) (*ClassifyResult, error)
}
