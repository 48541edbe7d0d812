package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/apperrors"
	"tally/repository/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("user not found", func(t *testing.T) {
		user, err := repo.GetByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("create and retrieve", func(t *testing.T) {
		original := testutil.CreateTestUserWithUsername("alice@example.com", "alice")
		err := repo.Create(ctx, original)
		require.NoError(t, err)
		assert.False(t, original.CreatedAt.IsZero())

		byID, err := repo.GetByID(ctx, original.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, original.Email, byID.Email)

		byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.Equal(t, original.ID, byEmail.ID)

		byUsername, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, byUsername)
		assert.Equal(t, original.ID, byUsername.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		duplicate := testutil.CreateTestUser("alice@example.com")
		err := repo.Create(ctx, duplicate)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	})

	t.Run("duplicate username", func(t *testing.T) {
		duplicate := testutil.CreateTestUserWithUsername("other@example.com", "alice")
		err := repo.Create(ctx, duplicate)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	})

	t.Run("nil username allowed twice", func(t *testing.T) {
		first := testutil.CreateTestUser("first@example.com")
		second := testutil.CreateTestUser("second@example.com")
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))
	})
}

func TestUserRepository_UpdateUsername(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUser("alice@example.com")
	require.NoError(t, repo.Create(ctx, user))

	t.Run("claims username", func(t *testing.T) {
		err := repo.UpdateUsername(ctx, user.ID, "alice")
		require.NoError(t, err)

		updated, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, updated.Username)
		assert.Equal(t, "alice", *updated.Username)
	})

	t.Run("username taken by another user", func(t *testing.T) {
		other := testutil.CreateTestUser("bob@example.com")
		require.NoError(t, repo.Create(ctx, other))

		err := repo.UpdateUsername(ctx, other.ID, "alice")
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

		// The loser keeps their previous username
		unchanged, err := repo.GetByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Nil(t, unchanged.Username)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := repo.UpdateUsername(ctx, "no-such-id", "carol")
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}
