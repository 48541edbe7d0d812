package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tally/apperrors"
	"tally/config"
	"tally/events"
	"tally/models"
)

// inviteCodeAttempts bounds the retry loop on invite code collisions. The
// code is a join token, not a trust boundary, so collisions are only a
// uniqueness concern.
const inviteCodeAttempts = 5

type roomService struct {
	uowFactory UnitOfWorkFactory
}

// NewRoomService creates a new room service
func NewRoomService(uowFactory UnitOfWorkFactory) RoomService {
	return &roomService{
		uowFactory: uowFactory,
	}
}

// newInviteCode generates a short random join token
func newInviteCode() string {
	return uuid.New().String()[:8]
}

// CreateRoom creates a room and atomically creates the caller's OWNER
// membership with the default starting balance. A unique violation aborts the
// whole Postgres transaction, so every invite code attempt runs in a fresh one.
func (s *roomService) CreateRoom(ctx context.Context, callerID, name string) (*models.Room, error) {
	if name == "" {
		return nil, apperrors.NewInvalidInput("room name must not be empty")
	}

	var room *models.Room
	var err error
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		room, err = s.createRoom(ctx, callerID, name)
		if !errors.Is(err, ErrInviteCodeTaken) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, ErrInviteCodeTaken) {
			return nil, fmt.Errorf("failed to create room: %w", err)
		}
		return nil, err
	}

	return room, nil
}

// createRoom is a single creation attempt with a freshly generated invite
// code. Returns ErrInviteCodeTaken unwrapped so the caller can retry.
func (s *roomService) createRoom(ctx context.Context, callerID, name string) (*models.Room, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	room := &models.Room{
		ID:         uuid.NewString(),
		Name:       name,
		InviteCode: newInviteCode(),
	}
	if err := uow.RoomRepository().Create(ctx, room); err != nil {
		if errors.Is(err, ErrInviteCodeTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	membership := &models.Membership{
		UserID:  callerID,
		RoomID:  room.ID,
		Role:    models.RoleOwner,
		Balance: config.Get().StartingBalance,
	}
	if err := uow.MembershipRepository().Create(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	uow.EventBus().Publish(events.RoomCreatedEvent{
		RoomID:     room.ID,
		Name:       room.Name,
		OwnerID:    callerID,
		InviteCode: room.InviteCode,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return room, nil
}

// JoinRoomByCode joins the caller to the room matching the invite code with
// the PLAYER role and the default starting balance. Joining a room twice is
// a Conflict.
func (s *roomService) JoinRoomByCode(ctx context.Context, callerID, code string) (*models.Room, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	room, err := uow.RoomRepository().GetByInviteCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up room: %w", err)
	}
	if room == nil {
		return nil, apperrors.NewNotFound("room not found")
	}

	existing, err := uow.MembershipRepository().Get(ctx, callerID, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflict("already joined")
	}

	membership := &models.Membership{
		UserID:  callerID,
		RoomID:  room.ID,
		Role:    models.RolePlayer,
		Balance: config.Get().StartingBalance,
	}
	// The primary key also guards the race between the check above and this
	// insert; a concurrent join surfaces as the same Conflict
	if err := uow.MembershipRepository().Create(ctx, membership); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.MemberJoinedEvent{
		RoomID: room.ID,
		UserID: callerID,
		Role:   models.RolePlayer,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return room, nil
}

// GetMyRooms returns all rooms the caller belongs to, annotated with the
// caller's role and the invite code
func (s *roomService) GetMyRooms(ctx context.Context, callerID string) ([]*models.RoomWithRole, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rooms, err := uow.MembershipRepository().ListRoomsByUser(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	return rooms, nil
}

// GetRoomByID returns the full room view for a member. The owner id is
// resolved from whichever membership row holds the OWNER role, never from
// the caller's own role.
func (s *roomService) GetRoomByID(ctx context.Context, callerID, roomID string) (*models.RoomDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	room, err := uow.RoomRepository().GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, apperrors.NewNotFound("room not found")
	}

	callerMembership, err := uow.MembershipRepository().Get(ctx, callerID, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get caller membership: %w", err)
	}
	if callerMembership == nil {
		return nil, apperrors.NewForbidden("you are not a member of this room")
	}

	owner, err := uow.MembershipRepository().GetOwner(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve room owner: %w", err)
	}

	members, err := uow.MembershipRepository().ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	detail := &models.RoomDetail{
		ID:         room.ID,
		Name:       room.Name,
		InviteCode: room.InviteCode,
		Role:       callerMembership.Role,
		Members:    members,
	}
	if owner != nil {
		detail.OwnerID = owner.UserID
	}

	return detail, nil
}

// KickUser removes a player from a room. Only the owner may kick, and the
// owner cannot kick themselves.
func (s *roomService) KickUser(ctx context.Context, callerID, roomID, targetUserID string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	room, err := uow.RoomRepository().GetByID(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return apperrors.NewNotFound("room not found")
	}

	callerMembership, err := uow.MembershipRepository().Get(ctx, callerID, roomID)
	if err != nil {
		return fmt.Errorf("failed to get caller membership: %w", err)
	}
	if callerMembership == nil {
		return apperrors.NewNotFound("you are not a member of this room")
	}
	if callerMembership.Role != models.RoleOwner {
		return apperrors.NewForbidden("only owners can remove users")
	}

	if targetUserID == callerID {
		return apperrors.NewInvalidInput("owner cannot remove themselves")
	}

	removed, err := uow.MembershipRepository().Delete(ctx, targetUserID, roomID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if removed == 0 {
		return apperrors.NewNotFound("member not found")
	}

	uow.EventBus().Publish(events.MemberKickedEvent{
		RoomID:   roomID,
		UserID:   targetUserID,
		KickedBy: callerID,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
