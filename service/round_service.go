package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tally/apperrors"
	"tally/events"
	"tally/models"
)

type roundService struct {
	uowFactory UnitOfWorkFactory
}

// NewRoundService creates a new round ledger service
func NewRoundService(uowFactory UnitOfWorkFactory) RoundService {
	return &roundService{
		uowFactory: uowFactory,
	}
}

// StartGameSession opens a new game session in a room. Nothing closes a
// session; clients track the current session id themselves.
func (s *roundService) StartGameSession(ctx context.Context, callerID, roomID string) (*models.GameSession, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := s.requireMembership(ctx, uow, callerID, roomID); err != nil {
		return nil, err
	}

	session := &models.GameSession{
		ID:     uuid.NewString(),
		RoomID: roomID,
	}
	if err := uow.GameSessionRepository().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create game session: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return session, nil
}

// ListGameSessions returns the sessions of a room, newest first
func (s *roundService) ListGameSessions(ctx context.Context, callerID, roomID string) ([]*models.GameSession, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := s.requireMembership(ctx, uow, callerID, roomID); err != nil {
		return nil, err
	}

	sessions, err := uow.GameSessionRepository().ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list game sessions: %w", err)
	}

	return sessions, nil
}

// SubmitRound persists every entry and applies all balance deltas within a
// single transaction. Either all entries and increments land, or none do.
func (s *roundService) SubmitRound(ctx context.Context, callerID, gameSessionID string, entries []models.RoundEntry) error {
	if len(entries) == 0 {
		return apperrors.NewInvalidInput("entries must not be empty")
	}
	for _, entry := range entries {
		if entry.Amount < 0 {
			return apperrors.NewInvalidInput("amount must be non-negative")
		}
		if !entry.Result.Valid() {
			return apperrors.NewInvalidInput(fmt.Sprintf("unknown result %q", entry.Result))
		}
		if entry.UserID == "" {
			return apperrors.NewInvalidInput("entry user id must not be empty")
		}
	}

	// Membership is deliberately not checked here: any authenticated caller
	// may record a round, and entries naming a user without a membership in
	// the room update zero balance rows
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	session, err := uow.GameSessionRepository().GetByID(ctx, gameSessionID)
	if err != nil {
		return fmt.Errorf("failed to get game session: %w", err)
	}
	if session == nil {
		return apperrors.NewNotFound("game session not found")
	}

	for _, entry := range entries {
		record := &models.Entry{
			ID:            uuid.NewString(),
			GameSessionID: gameSessionID,
			UserID:        entry.UserID,
			Amount:        entry.Amount,
			Result:        entry.Result,
		}
		if err := uow.EntryRepository().Create(ctx, record); err != nil {
			return fmt.Errorf("failed to persist entry: %w", err)
		}

		delta := entry.BalanceDelta()
		// An entry naming a user without a membership in this room increments
		// zero rows; the entry itself is still recorded
		if _, err := uow.MembershipRepository().AddToBalance(ctx, entry.UserID, session.RoomID, delta); err != nil {
			return fmt.Errorf("failed to apply balance delta: %w", err)
		}

		uow.EventBus().Publish(events.BalanceChangeEvent{
			UserID:        entry.UserID,
			RoomID:        session.RoomID,
			GameSessionID: gameSessionID,
			ChangeAmount:  delta,
			Result:        entry.Result,
		})
	}

	uow.EventBus().Publish(events.RoundSubmittedEvent{
		GameSessionID: gameSessionID,
		RoomID:        session.RoomID,
		EntryCount:    len(entries),
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// requireMembership resolves the caller's membership in a room, mapping a
// missing room to NotFound and a missing membership to Forbidden
func (s *roundService) requireMembership(ctx context.Context, uow UnitOfWork, callerID, roomID string) error {
	room, err := uow.RoomRepository().GetByID(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return apperrors.NewNotFound("room not found")
	}

	membership, err := uow.MembershipRepository().Get(ctx, callerID, roomID)
	if err != nil {
		return fmt.Errorf("failed to get membership: %w", err)
	}
	if membership == nil {
		return apperrors.NewForbidden("you are not a member of this room")
	}

	return nil
}
