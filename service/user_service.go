package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tally/apperrors"
	"tally/auth"
	"tally/events"
	"tally/models"
)

const minUsernameLength = 3

type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

// Register creates a new account with a bcrypt-hashed password. Username is
// optional at registration; the username flow can claim one later.
func (s *userService) Register(ctx context.Context, email, password string, username *string) (*models.User, error) {
	if email == "" {
		return nil, apperrors.NewInvalidInput("email must not be empty")
	}
	if password == "" {
		return nil, apperrors.NewInvalidInput("password must not be empty")
	}
	if username != nil && len(*username) < minUsernameLength {
		return nil, apperrors.NewInvalidInput("username must be at least 3 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	}
	// Unique constraints on email and username surface duplicates as Conflict
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.UserRegisteredEvent{
		UserID: user.ID,
		Email:  user.Email,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// Authenticate verifies credentials and returns the matching user. Bad
// email and bad password are deliberately indistinguishable.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperrors.NewUnauthenticated("invalid email or password")
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.NewUnauthenticated("invalid email or password")
	}

	return user, nil
}

// GetCurrentUser returns the caller's user record, nil when absent
func (s *userService) GetCurrentUser(ctx context.Context, userID string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdateUsername claims a username for the caller. Fails Conflict when a
// different user already holds it, leaving the caller's record unchanged.
func (s *userService) UpdateUsername(ctx context.Context, userID, username string) error {
	if len(username) < minUsernameLength {
		return apperrors.NewInvalidInput("username must be at least 3 characters")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	holder, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check username holder: %w", err)
	}
	if holder != nil && holder.ID != userID {
		return apperrors.NewConflict("username already taken")
	}

	// The unique constraint closes the race between the check and the update
	if err := uow.UserRepository().UpdateUsername(ctx, userID, username); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
