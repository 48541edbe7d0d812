package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tally/apperrors"
	"tally/database"
	"tally/models"
)

// MembershipRepository implements the service.MembershipRepository interface
type MembershipRepository struct {
	q queryable
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *database.DB) *MembershipRepository {
	return &MembershipRepository{q: db.Pool}
}

// newMembershipRepositoryWithTx creates a new membership repository with a transaction
func newMembershipRepositoryWithTx(tx queryable) *MembershipRepository {
	return &MembershipRepository{q: tx}
}

// Create creates a new membership
func (r *MembershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	query := `
		INSERT INTO memberships (user_id, room_id, role, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		membership.UserID,
		membership.RoomID,
		membership.Role,
		membership.Balance,
	).Scan(&membership.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "memberships_pkey") {
			return apperrors.NewConflict("already joined")
		}
		return fmt.Errorf("failed to create membership for user %s in room %s: %w",
			membership.UserID, membership.RoomID, err)
	}

	return nil
}

// Get retrieves the membership for (user, room)
func (r *MembershipRepository) Get(ctx context.Context, userID, roomID string) (*models.Membership, error) {
	query := `
		SELECT user_id, room_id, role, balance, created_at
		FROM memberships
		WHERE user_id = $1 AND room_id = $2
	`

	var m models.Membership
	err := r.q.QueryRow(ctx, query, userID, roomID).Scan(
		&m.UserID,
		&m.RoomID,
		&m.Role,
		&m.Balance,
		&m.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership for user %s in room %s: %w", userID, roomID, err)
	}

	return &m, nil
}

// GetOwner retrieves the membership holding the OWNER role in a room
func (r *MembershipRepository) GetOwner(ctx context.Context, roomID string) (*models.Membership, error) {
	query := `
		SELECT user_id, room_id, role, balance, created_at
		FROM memberships
		WHERE room_id = $1 AND role = 'OWNER'
	`

	var m models.Membership
	err := r.q.QueryRow(ctx, query, roomID).Scan(
		&m.UserID,
		&m.RoomID,
		&m.Role,
		&m.Balance,
		&m.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get owner of room %s: %w", roomID, err)
	}

	return &m, nil
}

// ListByRoom returns the members of a room with identity fields, ordered by
// balance descending then username ascending for the podium
func (r *MembershipRepository) ListByRoom(ctx context.Context, roomID string) ([]*models.RoomMember, error) {
	query := `
		SELECT m.user_id, u.email, u.username, m.role, m.balance
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id = $1
		ORDER BY m.balance DESC, u.username ASC
	`

	rows, err := r.q.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of room %s: %w", roomID, err)
	}
	defer rows.Close()

	// Empty, not nil, so an empty podium serializes as a JSON array
	members := make([]*models.RoomMember, 0)
	for rows.Next() {
		var m models.RoomMember
		err := rows.Scan(
			&m.UserID,
			&m.Email,
			&m.Username,
			&m.Role,
			&m.Balance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room member: %w", err)
		}
		members = append(members, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate room members: %w", err)
	}

	return members, nil
}

// ListRoomsByUser returns all rooms the user belongs to with their role
func (r *MembershipRepository) ListRoomsByUser(ctx context.Context, userID string) ([]*models.RoomWithRole, error) {
	query := `
		SELECT ro.id, ro.name, ro.invite_code, m.role
		FROM memberships m
		JOIN rooms ro ON ro.id = m.room_id
		WHERE m.user_id = $1
		ORDER BY ro.created_at DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms for user %s: %w", userID, err)
	}
	defer rows.Close()

	rooms := make([]*models.RoomWithRole, 0)
	for rows.Next() {
		var room models.RoomWithRole
		err := rows.Scan(
			&room.ID,
			&room.Name,
			&room.InviteCode,
			&room.Role,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, &room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rooms: %w", err)
	}

	return rooms, nil
}

// Delete removes a membership, returning the number of rows removed
func (r *MembershipRepository) Delete(ctx context.Context, userID, roomID string) (int64, error) {
	query := `
		DELETE FROM memberships
		WHERE user_id = $1 AND room_id = $2
	`

	result, err := r.q.Exec(ctx, query, userID, roomID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete membership for user %s in room %s: %w", userID, roomID, err)
	}

	return result.RowsAffected(), nil
}

// AddToBalance applies a signed delta to a membership balance as an atomic
// increment. Increment-style updates avoid lost updates under concurrent
// round submissions without explicit locks.
func (r *MembershipRepository) AddToBalance(ctx context.Context, userID, roomID string, delta int64) (int64, error) {
	query := `
		UPDATE memberships
		SET balance = balance + $1
		WHERE user_id = $2 AND room_id = $3
	`

	result, err := r.q.Exec(ctx, query, delta, userID, roomID)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance for user %s in room %s: %w", userID, roomID, err)
	}

	return result.RowsAffected(), nil
}
