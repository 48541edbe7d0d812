package repository

import (
	"context"
	"fmt"

	"tally/database"
	"tally/models"
)

// EntryRepository implements the service.EntryRepository interface
type EntryRepository struct {
	q queryable
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *database.DB) *EntryRepository {
	return &EntryRepository{q: db.Pool}
}

// newEntryRepositoryWithTx creates a new entry repository with a transaction
func newEntryRepositoryWithTx(tx queryable) *EntryRepository {
	return &EntryRepository{q: tx}
}

// Create persists an immutable round entry
func (r *EntryRepository) Create(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO entries (id, game_session_id, user_id, amount, result)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.ID,
		entry.GameSessionID,
		entry.UserID,
		entry.Amount,
		entry.Result,
	).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create entry for user %s in session %s: %w",
			entry.UserID, entry.GameSessionID, err)
	}

	return nil
}

// ListBySession returns all entries of a game session in insertion order
func (r *EntryRepository) ListBySession(ctx context.Context, gameSessionID string) ([]*models.Entry, error) {
	query := `
		SELECT id, game_session_id, user_id, amount, result, created_at
		FROM entries
		WHERE game_session_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query, gameSessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for session %s: %w", gameSessionID, err)
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0)
	for rows.Next() {
		var entry models.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.GameSessionID,
			&entry.UserID,
			&entry.Amount,
			&entry.Result,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return entries, nil
}
