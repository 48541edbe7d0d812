package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/repository/testutil"
)

func TestGameSessionRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	rooms := NewRoomRepository(testDB.DB)
	repo := NewGameSessionRepository(testDB.DB)
	ctx := context.Background()

	room := testutil.CreateTestRoom("friday poker")
	require.NoError(t, rooms.Create(ctx, room))

	t.Run("no sessions yields empty list", func(t *testing.T) {
		sessions, err := repo.ListByRoom(ctx, room.ID)
		require.NoError(t, err)
		require.NotNil(t, sessions)
		assert.Empty(t, sessions)
	})

	t.Run("session not found", func(t *testing.T) {
		session, err := repo.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("create and retrieve", func(t *testing.T) {
		session := testutil.CreateTestGameSession(room.ID)
		err := repo.Create(ctx, session)
		require.NoError(t, err)
		assert.False(t, session.StartedAt.IsZero())

		found, err := repo.GetByID(ctx, session.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, room.ID, found.RoomID)
	})

	t.Run("list newest first", func(t *testing.T) {
		older := testutil.CreateTestGameSession(room.ID)
		require.NoError(t, repo.Create(ctx, older))
		time.Sleep(10 * time.Millisecond)
		newer := testutil.CreateTestGameSession(room.ID)
		require.NoError(t, repo.Create(ctx, newer))

		sessions, err := repo.ListByRoom(ctx, room.ID)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(sessions), 2)
		assert.Equal(t, newer.ID, sessions[0].ID)
	})
}
