package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hoangvq/summarize-be/internal/domain"
	"github.com/hoangvq/summarize-be/shared/postgresql"
	"github.com/jmoiron/sqlx"
)

// Store handles all database operations for summary records.
// Each summary is an independent row; the store performs no cross-row
// coordination.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new Store instance
func NewStore(pg *postgresql.Client) *Store {
	return &Store{
		db: pg.GetDB(),
	}
}

// Create inserts a new summary record in pending status with an empty
// summary text. The row is durable before Create returns, so the caller
// may hand out the id and accept polls immediately.
func (s *Store) Create(ctx context.Context, summary *domain.Summary) error {
	query := `
		INSERT INTO pdf_summaries (
			summary_id, user_id, original_file_url, file_name,
			title, summary_text, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		summary.SummaryID,
		summary.UserID,
		summary.FileURL,
		summary.FileName,
		summary.Title,
		summary.SummaryText,
		summary.Status,
		summary.CreatedAt,
		summary.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}

	return nil
}

// Complete sets status=completed and stores the summary text. The update
// matches by id only and overwrites whatever is there (last write wins),
// which keeps a duplicated background run harmless.
func (s *Store) Complete(ctx context.Context, summaryID, summaryText string) error {
	query := `
		UPDATE pdf_summaries
		SET status = $1,
		    summary_text = $2,
		    updated_at = NOW()
		WHERE summary_id = $3
	`

	result, err := s.db.ExecContext(ctx, query, domain.StatusCompleted, summaryText, summaryID)
	if err != nil {
		return fmt.Errorf("failed to complete summary: %w", err)
	}

	return checkExists(result)
}

// Fail sets status=failed and clears the summary text, keeping the
// invariant that text is present only on completed records even if a
// duplicate run wrote one first.
func (s *Store) Fail(ctx context.Context, summaryID string) error {
	query := `
		UPDATE pdf_summaries
		SET status = $1,
		    summary_text = '',
		    updated_at = NOW()
		WHERE summary_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, domain.StatusFailed, summaryID)
	if err != nil {
		return fmt.Errorf("failed to mark summary failed: %w", err)
	}

	return checkExists(result)
}

// GetByID retrieves a summary record by its id
func (s *Store) GetByID(ctx context.Context, summaryID string) (*domain.Summary, error) {
	var summary domain.Summary
	query := `
		SELECT
			summary_id, user_id, original_file_url, file_name,
			title, summary_text, status, created_at, updated_at
		FROM pdf_summaries
		WHERE summary_id = $1
	`

	err := s.db.GetContext(ctx, &summary, query, summaryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSummaryNotFound
		}
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	return &summary, nil
}

// Delete removes a summary record. Deletion is a plain row operation and
// never participates in the status state machine.
func (s *Store) Delete(ctx context.Context, summaryID string) error {
	query := `DELETE FROM pdf_summaries WHERE summary_id = $1`

	result, err := s.db.ExecContext(ctx, query, summaryID)
	if err != nil {
		return fmt.Errorf("failed to delete summary: %w", err)
	}

	return checkExists(result)
}

// SummaryFilter narrows List results
type SummaryFilter struct {
	UserID   string
	Status   string
	PageSize int
	Cursor   *SummaryCursor
}

// SummaryCursor is a keyset-pagination position over (created_at, summary_id)
type SummaryCursor struct {
	CreatedAt time.Time
	SummaryID string
}

// List returns summaries newest-first with keyset pagination. Fetches one
// row past PageSize so the caller can tell whether more results exist.
func (s *Store) List(ctx context.Context, filter SummaryFilter) ([]domain.Summary, error) {
	query := `
		SELECT
			summary_id, user_id, original_file_url, file_name,
			title, summary_text, status, created_at, updated_at
		FROM pdf_summaries
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, filter.UserID)
		argIdx++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, summary_id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.SummaryID)
		argIdx += 2
	}

	query += " ORDER BY created_at DESC, summary_id DESC"

	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var summaries []domain.Summary
	err := s.db.SelectContext(ctx, &summaries, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}

	return summaries, nil
}

// checkExists converts an UPDATE/DELETE that touched no rows into
// ErrSummaryNotFound
func checkExists(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrSummaryNotFound
	}

	return nil
}
