package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tally/apperrors"
	"tally/events"
	"tally/models"
)

func TestStartGameSession(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(true)

	room := &models.Room{ID: "room-1"}
	member := &models.Membership{UserID: "alice", RoomID: "room-1", Role: models.RoleOwner}
	m.rooms.On("GetByID", ctx, "room-1").Return(room, nil)
	m.memberships.On("Get", ctx, "alice", "room-1").Return(member, nil)
	m.sessions.On("Create", ctx, mock.MatchedBy(func(s *models.GameSession) bool {
		return s.RoomID == "room-1" && s.ID != ""
	})).Return(nil)

	svc := NewRoundService(m.factory)
	session, err := svc.StartGameSession(ctx, "alice", "room-1")

	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "room-1", session.RoomID)
	m.sessions.AssertExpectations(t)
	m.uow.AssertExpectations(t)
}

func TestStartGameSession_NotAMember(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(false)

	room := &models.Room{ID: "room-1"}
	m.rooms.On("GetByID", ctx, "room-1").Return(room, nil)
	m.memberships.On("Get", ctx, "mallory", "room-1").Return(nil, nil)

	svc := NewRoundService(m.factory)
	_, err := svc.StartGameSession(ctx, "mallory", "room-1")

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	m.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListGameSessions(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(false)

	room := &models.Room{ID: "room-1"}
	member := &models.Membership{UserID: "bob", RoomID: "room-1", Role: models.RolePlayer}
	sessions := []*models.GameSession{
		{ID: "session-2", RoomID: "room-1"},
		{ID: "session-1", RoomID: "room-1"},
	}
	m.rooms.On("GetByID", ctx, "room-1").Return(room, nil)
	m.memberships.On("Get", ctx, "bob", "room-1").Return(member, nil)
	m.sessions.On("ListByRoom", ctx, "room-1").Return(sessions, nil)

	svc := NewRoundService(m.factory)
	got, err := svc.ListGameSessions(ctx, "bob", "room-1")

	require.NoError(t, err)
	assert.Equal(t, sessions, got)
}

func TestSubmitRound(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(true)

	session := &models.GameSession{ID: "session-1", RoomID: "room-1"}
	m.sessions.On("GetByID", ctx, "session-1").Return(session, nil)
	m.entries.On("Create", ctx, mock.MatchedBy(func(e *models.Entry) bool {
		return e.GameSessionID == "session-1" && e.UserID == "alice" && e.Amount == 100 && e.Result == models.ResultWin
	})).Return(nil).Once()
	m.entries.On("Create", ctx, mock.MatchedBy(func(e *models.Entry) bool {
		return e.GameSessionID == "session-1" && e.UserID == "bob" && e.Amount == 50 && e.Result == models.ResultLoss
	})).Return(nil).Once()
	m.memberships.On("AddToBalance", ctx, "alice", "room-1", int64(100)).Return(int64(1), nil)
	m.memberships.On("AddToBalance", ctx, "bob", "room-1", int64(-50)).Return(int64(1), nil)

	svc := NewRoundService(m.factory)
	err := svc.SubmitRound(ctx, "alice", "session-1", []models.RoundEntry{
		{UserID: "alice", Amount: 100, Result: models.ResultWin},
		{UserID: "bob", Amount: 50, Result: models.ResultLoss},
	})

	require.NoError(t, err)
	m.entries.AssertExpectations(t)
	m.memberships.AssertExpectations(t)
	m.uow.AssertExpectations(t)

	// Two balance change events plus the round summary
	published := m.uow.PublishedEvents()
	require.Len(t, published, 3)
	summary := published[2].(events.RoundSubmittedEvent)
	assert.Equal(t, "session-1", summary.GameSessionID)
	assert.Equal(t, 2, summary.EntryCount)
}

func TestSubmitRound_DrawLeavesBalanceUntouched(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(true)

	session := &models.GameSession{ID: "session-1", RoomID: "room-1"}
	m.sessions.On("GetByID", ctx, "session-1").Return(session, nil)
	m.entries.On("Create", ctx, mock.AnythingOfType("*models.Entry")).Return(nil)
	m.memberships.On("AddToBalance", ctx, "alice", "room-1", int64(0)).Return(int64(1), nil)

	svc := NewRoundService(m.factory)
	err := svc.SubmitRound(ctx, "alice", "session-1", []models.RoundEntry{
		{UserID: "alice", Amount: 75, Result: models.ResultDraw},
	})

	require.NoError(t, err)
	m.memberships.AssertExpectations(t)
}

func TestSubmitRound_CallerNeedNotBeMember(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(true)

	session := &models.GameSession{ID: "session-1", RoomID: "room-1"}
	m.sessions.On("GetByID", ctx, "session-1").Return(session, nil)
	m.entries.On("Create", ctx, mock.AnythingOfType("*models.Entry")).Return(nil)
	m.memberships.On("AddToBalance", ctx, "alice", "room-1", int64(100)).Return(int64(1), nil)

	svc := NewRoundService(m.factory)
	err := svc.SubmitRound(ctx, "mallory", "session-1", []models.RoundEntry{
		{UserID: "alice", Amount: 100, Result: models.ResultWin},
	})

	// Unlike session creation and listing, submission has no membership gate
	require.NoError(t, err)
	m.memberships.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitRound_EmptyEntries(t *testing.T) {
	m := newServiceMocks()

	svc := NewRoundService(m.factory)
	err := svc.SubmitRound(context.Background(), "alice", "session-1", nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	m.factory.AssertNotCalled(t, "Create")
}

func TestSubmitRound_NegativeAmount(t *testing.T) {
	m := newServiceMocks()

	svc := NewRoundService(m.factory)
	err := svc.SubmitRound(context.Background(), "alice", "session-1", []models.RoundEntry{
		{UserID: "alice", Amount: -100, Result: models.ResultWin},
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	m.factory.AssertNotCalled(t, "Create")
}

func TestSubmitRound_UnknownResult(t *testing.T) {
	m := newServiceMocks()

	svc := NewRoundService(m.factory)
	err := svc.SubmitRound(context.Background(), "alice", "session-1", []models.RoundEntry{
		{UserID: "alice", Amount: 100, Result: "TIE"},
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
}

func TestSubmitRound_UnknownSession(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(false)

	m.sessions.On("GetByID", ctx, "missing").Return(nil, nil)

	svc := NewRoundService(m.factory)
	err := svc.SubmitRound(ctx, "alice", "missing", []models.RoundEntry{
		{UserID: "alice", Amount: 100, Result: models.ResultWin},
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	m.entries.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestSubmitRound_BalanceUpdateFailureAbortsRound(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(false)

	session := &models.GameSession{ID: "session-1", RoomID: "room-1"}
	m.sessions.On("GetByID", ctx, "session-1").Return(session, nil)
	m.entries.On("Create", ctx, mock.AnythingOfType("*models.Entry")).Return(nil)
	m.memberships.On("AddToBalance", ctx, "alice", "room-1", int64(100)).Return(int64(1), nil)
	m.memberships.On("AddToBalance", ctx, "bob", "room-1", int64(-50)).Return(int64(0), errors.New("connection reset"))

	svc := NewRoundService(m.factory)
	err := svc.SubmitRound(ctx, "alice", "session-1", []models.RoundEntry{
		{UserID: "alice", Amount: 100, Result: models.ResultWin},
		{UserID: "bob", Amount: 50, Result: models.ResultLoss},
	})

	// The transaction is rolled back, so alice's applied delta never lands
	require.Error(t, err)
	m.uow.AssertNotCalled(t, "Commit")
	m.uow.AssertCalled(t, "Rollback")
}
