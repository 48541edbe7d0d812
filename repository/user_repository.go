package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tally/apperrors"
	"tally/database"
	"tally/models"
)

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "id", id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email", email)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "username", username)
}

func (r *UserRepository) getOne(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, username, password_hash, created_at
		FROM users
		WHERE %s = $1
	`, column)

	var user models.User
	err := r.q.QueryRow(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, user.ID, user.Email, user.Username, user.PasswordHash).Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return apperrors.NewConflict("email already registered")
		}
		if isUniqueViolation(err, "users_username_key") {
			return apperrors.NewConflict("username already taken")
		}
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}

	return nil
}

// UpdateUsername sets a user's username
func (r *UserRepository) UpdateUsername(ctx context.Context, id string, username string) error {
	query := `
		UPDATE users
		SET username = $1
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, username, id)
	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return apperrors.NewConflict("username already taken")
		}
		return fmt.Errorf("failed to update username for user %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NewNotFound("user not found")
	}

	return nil
}
