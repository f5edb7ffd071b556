package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rapidread/rapidread/internal/model"
)

// ErrSummaryNotFound indicates the requested summary does not exist.
var ErrSummaryNotFound = errors.New("summary not found")

// CreateSummary inserts a new summary row.
func (r *Repository) CreateSummary(ctx context.Context, s *model.Summary) error {
	query := `
		INSERT INTO summaries (id, user_id, source_type, source, title, original_excerpt, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.UserID,
		string(s.SourceType),
		s.Source,
		s.Title,
		s.OriginalExcerpt,
		s.SummaryText,
		s.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}

	return nil
}

// GetSummaryByID retrieves a single summary by its ID.
// Ownership is checked by the caller; this returns the row regardless of owner.
func (r *Repository) GetSummaryByID(ctx context.Context, id string) (*model.Summary, error) {
	query := `
		SELECT id, user_id, source_type, source, title, original_excerpt, summary, created_at
		FROM summaries
		WHERE id = $1
	`

	var s model.Summary
	var sourceType string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.UserID,
		&sourceType,
		&s.Source,
		&s.Title,
		&s.OriginalExcerpt,
		&s.SummaryText,
		&s.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSummaryNotFound
		}
		return nil, fmt.Errorf("failed to get summary by ID: %w", err)
	}

	s.SourceType = model.SourceType(sourceType)
	return &s, nil
}

// ListSummariesByUser returns a user's summaries, newest first.
// The excerpt is included; callers that only render history may ignore it.
func (r *Repository) ListSummariesByUser(ctx context.Context, userID string, limit int) ([]*model.Summary, error) {
	query := `
		SELECT id, user_id, source_type, source, title, original_excerpt, summary, created_at
		FROM summaries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*model.Summary
	for rows.Next() {
		var s model.Summary
		var sourceType string
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&sourceType,
			&s.Source,
			&s.Title,
			&s.OriginalExcerpt,
			&s.SummaryText,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		s.SourceType = model.SourceType(sourceType)
		summaries = append(summaries, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summaries: %w", err)
	}

	return summaries, nil
}

// DeleteSummary removes a summary by ID.
func (r *Repository) DeleteSummary(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM summaries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSummaryNotFound
	}
	return nil
}

// CountSummariesByUser returns the number of summaries a user owns.
func (r *Repository) CountSummariesByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM summaries WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count summaries: %w", err)
	}
	return count, nil
}
