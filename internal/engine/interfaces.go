package engine

import (
	"context"

	"github.com/dealscout/dealscout/internal/models"
)

// SourceReader yields a finite batch of raw messages for the configured
// source channel. A connection or authorization failure surfaces as an
// error, which the engine treats as a degraded cycle, not a crash.
type SourceReader interface {
	ReadMessages(ctx context.Context, limit int) ([]models.RawMessage, error)
}

// Publisher posts one accepted deal to the output channel. Failures are
// reported per item; the engine does not retry them.
type Publisher interface {
	Publish(ctx context.Context, deal models.Deal) error
}

// Extractor builds a candidate from one raw message. ok is false for every
// expected no-deal outcome.
type Extractor interface {
	Extract(ctx context.Context, msg models.RawMessage) (models.DealCandidate, bool)
}
