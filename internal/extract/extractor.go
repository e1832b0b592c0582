package extract

import "context"

// Extractor produces the raw text of an uploaded document. Implementations
// must fail cleanly rather than return truncated content; the pipeline never
// retries an extraction.
type Extractor interface {
	Extract(ctx context.Context, fileURL string) (string, error)
}
