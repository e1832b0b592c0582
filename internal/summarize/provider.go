package summarize

import (
	"context"
	"errors"
	"fmt"
)

// Provider generates a summary for a block of document text using a fixed
// system instruction. Implementations report capacity exhaustion through
// ProviderError so the gateway can decide whether a fallback is worthwhile.
type Provider interface {
	Name() string
	GenerateSummary(ctx context.Context, text string) (string, error)
}

// ErrorKind classifies provider failures
type ErrorKind string

const (
	// KindRateLimit is a provider-reported request-rate limit
	KindRateLimit ErrorKind = "RATE_LIMIT"
	// KindQuotaExceeded is a provider-reported quota/billing exhaustion
	KindQuotaExceeded ErrorKind = "QUOTA_EXCEEDED"
	// KindOther covers every non-capacity failure
	KindOther ErrorKind = "OTHER"
)

// ProviderError carries the failure classification alongside the cause
type ProviderError struct {
	Kind ErrorKind
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (%s): %s", e.Kind, e.Err.Error())
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a classified provider error
func NewProviderError(kind ErrorKind, err error) error {
	return &ProviderError{Kind: kind, Err: err}
}

// IsCapacityError reports whether err is a provider-reported capacity
// failure (rate limit or quota exhaustion). Only these trigger fallback.
func IsCapacityError(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Kind == KindRateLimit || provErr.Kind == KindQuotaExceeded
	}
	return false
}
