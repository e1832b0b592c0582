package summarize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hoangvq/summarize-be/internal/domain"
)

// Gateway produces a summary from document text, absorbing provider
// capacity failures through a single fallback to the secondary provider.
// Callers never learn which provider answered.
type Gateway struct {
	primary   Provider
	secondary Provider
	logger    *slog.Logger
}

// NewGateway creates a summarizer gateway over a primary and secondary provider
func NewGateway(primary, secondary Provider, logger *slog.Logger) *Gateway {
	return &Gateway{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Summarize calls the primary provider and, only when the primary fails
// with a capacity error (rate limit or quota exhaustion), falls back to the
// secondary exactly once with the same text. Any other primary failure, or
// any secondary failure, is terminal for this call. An empty summary from
// either provider counts as a failure.
func (g *Gateway) Summarize(ctx context.Context, text string) (string, error) {
	summary, err := g.primary.GenerateSummary(ctx, text)
	if err != nil {
		if !IsCapacityError(err) {
			g.logger.Error("Primary provider failed",
				slog.String("provider", g.primary.Name()),
				slog.Any("error", err),
			)
			return "", fmt.Errorf("%w: %v", domain.ErrSummarizationFailed, err)
		}

		g.logger.Warn("Primary provider at capacity, falling back",
			slog.String("primary", g.primary.Name()),
			slog.String("secondary", g.secondary.Name()),
		)

		summary, err = g.secondary.GenerateSummary(ctx, text)
		if err != nil {
			g.logger.Error("Secondary provider failed after fallback",
				slog.String("provider", g.secondary.Name()),
				slog.Any("error", err),
			)
			return "", fmt.Errorf("%w: %v", domain.ErrSummarizationFailed, err)
		}
	}

	if summary == "" {
		return "", fmt.Errorf("%w: provider returned an empty summary", domain.ErrSummarizationFailed)
	}

	return summary, nil
}
