package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tally/database"
	"tally/models"
	"tally/service"
)

// RoomRepository implements the service.RoomRepository interface
type RoomRepository struct {
	q queryable
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *database.DB) *RoomRepository {
	return &RoomRepository{q: db.Pool}
}

// newRoomRepositoryWithTx creates a new room repository with a transaction
func newRoomRepositoryWithTx(tx queryable) *RoomRepository {
	return &RoomRepository{q: tx}
}

// GetByID retrieves a room by id
func (r *RoomRepository) GetByID(ctx context.Context, id string) (*models.Room, error) {
	return r.getOne(ctx, "id", id)
}

// GetByInviteCode retrieves a room by invite code
func (r *RoomRepository) GetByInviteCode(ctx context.Context, code string) (*models.Room, error) {
	return r.getOne(ctx, "invite_code", code)
}

func (r *RoomRepository) getOne(ctx context.Context, column, value string) (*models.Room, error) {
	query := fmt.Sprintf(`
		SELECT id, name, invite_code, created_at
		FROM rooms
		WHERE %s = $1
	`, column)

	var room models.Room
	err := r.q.QueryRow(ctx, query, value).Scan(
		&room.ID,
		&room.Name,
		&room.InviteCode,
		&room.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room by %s: %w", column, err)
	}

	return &room, nil
}

// Create creates a new room. Returns service.ErrInviteCodeTaken when the
// invite code collides so the service can retry with a fresh one.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (id, name, invite_code)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, room.ID, room.Name, room.InviteCode).Scan(&room.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "rooms_invite_code_key") {
			return service.ErrInviteCodeTaken
		}
		return fmt.Errorf("failed to create room %s: %w", room.Name, err)
	}

	return nil
}
