package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "alumnet/errors"
)

// Gate is the authoritative moderation boundary. It runs the classifier with
// a deadline and fails closed: a classifier error or timeout blocks the write
// exactly like a toxic verdict would block it. Client-side previews go
// through the same classifier but carry no authority.
type Gate struct {
	classifier Classifier
	timeout    time.Duration
	log        *slog.Logger
}

func NewGate(classifier Classifier, timeout time.Duration, log *slog.Logger) *Gate {
	return &Gate{classifier: classifier, timeout: timeout, log: log}
}

// Check returns nil only for a CLEAN verdict.
func (g *Gate) Check(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.classifier.Classify(ctx, text)
	if err != nil {
		g.log.Error("classifier unreachable, failing closed", "error", err)
		return fmt.Errorf("%w: %v", apperrors.ErrModerationUnavailable, err)
	}

	if result.Label != LabelClean {
		g.log.Info("content rejected",
			"score", result.Score,
			"feedback", result.Feedback,
		)
		return apperrors.ErrModerationRejected
	}
	return nil
}

// Preview exposes the raw classification for the advisory client-side check.
func (g *Gate) Preview(ctx context.Context, text string) (Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.classifier.Classify(ctx, text)
}
