package domain

import "errors"

var (
	// ErrSummaryNotFound is returned when a summary id does not exist in the database
	ErrSummaryNotFound = errors.New("summary not found")

	// ErrExtractionFailed is returned when the document text could not be extracted
	ErrExtractionFailed = errors.New("document extraction failed")

	// ErrSummarizationFailed is returned when no provider produced a usable summary
	ErrSummarizationFailed = errors.New("summary generation failed")
)
