package service

import (
	"context"
	"errors"

	"tally/events"
	"tally/models"
)

// ErrInviteCodeTaken is returned by RoomRepository.Create when the generated
// invite code collides with an existing room, so the caller can retry with a
// fresh code
var ErrInviteCodeTaken = errors.New("invite code already taken")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id, returning nil when absent
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail retrieves a user by email, returning nil when absent
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByUsername retrieves a user by username, returning nil when absent
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// UpdateUsername sets a user's username
	UpdateUsername(ctx context.Context, id string, username string) error
}

// RoomRepository defines the interface for room data access
type RoomRepository interface {
	// GetByID retrieves a room by id, returning nil when absent
	GetByID(ctx context.Context, id string) (*models.Room, error)

	// GetByInviteCode retrieves a room by invite code, returning nil when absent
	GetByInviteCode(ctx context.Context, code string) (*models.Room, error)

	// Create creates a new room. Returns ErrInviteCodeTaken when the invite
	// code collides with an existing room.
	Create(ctx context.Context, room *models.Room) error
}

// MembershipRepository defines the interface for membership data access
type MembershipRepository interface {
	// Create creates a new membership
	Create(ctx context.Context, membership *models.Membership) error

	// Get retrieves the membership for (user, room), returning nil when absent
	Get(ctx context.Context, userID, roomID string) (*models.Membership, error)

	// GetOwner retrieves the membership holding the OWNER role in a room
	GetOwner(ctx context.Context, roomID string) (*models.Membership, error)

	// ListByRoom returns the members of a room with identity fields, ordered
	// by balance descending then username ascending
	ListByRoom(ctx context.Context, roomID string) ([]*models.RoomMember, error)

	// ListRoomsByUser returns all rooms the user belongs to with their role
	ListRoomsByUser(ctx context.Context, userID string) ([]*models.RoomWithRole, error)

	// Delete removes a membership, returning the number of rows removed
	Delete(ctx context.Context, userID, roomID string) (int64, error)

	// AddToBalance applies a signed delta to a membership balance as an
	// atomic increment, returning the number of rows updated
	AddToBalance(ctx context.Context, userID, roomID string, delta int64) (int64, error)
}

// GameSessionRepository defines the interface for game session data access
type GameSessionRepository interface {
	// Create creates a new game session
	Create(ctx context.Context, session *models.GameSession) error

	// GetByID retrieves a game session by id, returning nil when absent
	GetByID(ctx context.Context, id string) (*models.GameSession, error)

	// ListByRoom returns the sessions of a room, newest first
	ListByRoom(ctx context.Context, roomID string) ([]*models.GameSession, error)
}

// EntryRepository defines the interface for round entry data access
type EntryRepository interface {
	// Create persists an immutable round entry
	Create(ctx context.Context, entry *models.Entry) error

	// ListBySession returns all entries of a game session in insertion order
	ListBySession(ctx context.Context, gameSessionID string) ([]*models.Entry, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	RoomRepository() RoomRepository
	MembershipRepository() MembershipRepository
	GameSessionRepository() GameSessionRepository
	EntryRepository() EntryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UserService defines the interface for account operations
type UserService interface {
	// Register creates a new account with a bcrypt-hashed password
	Register(ctx context.Context, email, password string, username *string) (*models.User, error)

	// Authenticate verifies credentials and returns the matching user
	Authenticate(ctx context.Context, email, password string) (*models.User, error)

	// GetCurrentUser returns the caller's user record, nil when absent
	GetCurrentUser(ctx context.Context, userID string) (*models.User, error)

	// UpdateUsername claims a username for the caller
	UpdateUsername(ctx context.Context, userID, username string) error
}

// RoomService defines the interface for room directory operations
type RoomService interface {
	// CreateRoom creates a room and its owner membership
	CreateRoom(ctx context.Context, callerID, name string) (*models.Room, error)

	// JoinRoomByCode joins the caller to the room matching the invite code
	JoinRoomByCode(ctx context.Context, callerID, code string) (*models.Room, error)

	// GetMyRooms returns all rooms the caller belongs to
	GetMyRooms(ctx context.Context, callerID string) ([]*models.RoomWithRole, error)

	// GetRoomByID returns the full room view for a member
	GetRoomByID(ctx context.Context, callerID, roomID string) (*models.RoomDetail, error)

	// KickUser removes a player from a room on behalf of its owner
	KickUser(ctx context.Context, callerID, roomID, targetUserID string) error
}

// RoundService defines the interface for the round ledger engine
type RoundService interface {
	// StartGameSession opens a new game session in a room
	StartGameSession(ctx context.Context, callerID, roomID string) (*models.GameSession, error)

	// ListGameSessions returns the sessions of a room, newest first
	ListGameSessions(ctx context.Context, callerID, roomID string) ([]*models.GameSession, error)

	// SubmitRound persists the round entries and applies every balance delta
	// as a single atomic transaction
	SubmitRound(ctx context.Context, callerID, gameSessionID string, entries []models.RoundEntry) error
}
