package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tally/database"
	"tally/models"
)

// GameSessionRepository implements the service.GameSessionRepository interface
type GameSessionRepository struct {
	q queryable
}

// NewGameSessionRepository creates a new game session repository
func NewGameSessionRepository(db *database.DB) *GameSessionRepository {
	return &GameSessionRepository{q: db.Pool}
}

// newGameSessionRepositoryWithTx creates a new game session repository with a transaction
func newGameSessionRepositoryWithTx(tx queryable) *GameSessionRepository {
	return &GameSessionRepository{q: tx}
}

// Create creates a new game session stamped with the current time
func (r *GameSessionRepository) Create(ctx context.Context, session *models.GameSession) error {
	query := `
		INSERT INTO game_sessions (id, room_id)
		VALUES ($1, $2)
		RETURNING started_at
	`

	err := r.q.QueryRow(ctx, query, session.ID, session.RoomID).Scan(&session.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create game session in room %s: %w", session.RoomID, err)
	}

	return nil
}

// GetByID retrieves a game session by id
func (r *GameSessionRepository) GetByID(ctx context.Context, id string) (*models.GameSession, error) {
	query := `
		SELECT id, room_id, started_at
		FROM game_sessions
		WHERE id = $1
	`

	var session models.GameSession
	err := r.q.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.RoomID,
		&session.StartedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game session %s: %w", id, err)
	}

	return &session, nil
}

// ListByRoom returns the sessions of a room, newest first
func (r *GameSessionRepository) ListByRoom(ctx context.Context, roomID string) ([]*models.GameSession, error) {
	query := `
		SELECT id, room_id, started_at
		FROM game_sessions
		WHERE room_id = $1
		ORDER BY started_at DESC
	`

	rows, err := r.q.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list game sessions for room %s: %w", roomID, err)
	}
	defer rows.Close()

	sessions := make([]*models.GameSession, 0)
	for rows.Next() {
		var session models.GameSession
		err := rows.Scan(
			&session.ID,
			&session.RoomID,
			&session.StartedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game session: %w", err)
		}
		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game sessions: %w", err)
	}

	return sessions, nil
}
