package domain

import "time"

// Summary status constants
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Summary represents one summarization request's lifecycle.
// A record is created in pending with an empty SummaryText; exactly one
// terminal write (completed or failed) is applied per execution attempt,
// and SummaryText is non-empty only for completed records.
type Summary struct {
	SummaryID   string    `db:"summary_id"`
	UserID      string    `db:"user_id"`
	FileURL     string    `db:"original_file_url"`
	FileName    string    `db:"file_name"`
	Title       string    `db:"title"`
	SummaryText string    `db:"summary_text"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// IsTerminal reports whether the status admits no further transition.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}
