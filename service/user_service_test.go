package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tally/apperrors"
	"tally/auth"
	"tally/models"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(true)

	var created *models.User
	m.users.On("Create", ctx, mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.User)
	}).Return(nil)

	svc := NewUserService(m.factory)
	user, err := svc.Register(ctx, "alice@example.com", "s3cret", nil)

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Nil(t, user.Username)

	// The stored hash verifies against the plaintext and is not the plaintext
	require.NotNil(t, created)
	assert.NotEqual(t, "s3cret", created.PasswordHash)
	assert.True(t, auth.CheckPassword(created.PasswordHash, "s3cret"))
	m.uow.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(false)

	m.users.On("Create", ctx, mock.AnythingOfType("*models.User")).
		Return(apperrors.NewConflict("email already registered"))

	svc := NewUserService(m.factory)
	_, err := svc.Register(ctx, "alice@example.com", "s3cret", nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	m.uow.AssertNotCalled(t, "Commit")
}

func TestRegister_EmptyFields(t *testing.T) {
	m := newServiceMocks()
	svc := NewUserService(m.factory)

	_, err := svc.Register(context.Background(), "", "s3cret", nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

	_, err = svc.Register(context.Background(), "alice@example.com", "", nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

	short := "al"
	_, err = svc.Register(context.Background(), "alice@example.com", "s3cret", &short)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

	m.factory.AssertNotCalled(t, "Create")
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(false)

	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	user := &models.User{ID: "user-1", Email: "alice@example.com", PasswordHash: hash}
	m.users.On("GetByEmail", ctx, "alice@example.com").Return(user, nil)

	svc := NewUserService(m.factory)
	got, err := svc.Authenticate(ctx, "alice@example.com", "s3cret")

	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(false)

	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	user := &models.User{ID: "user-1", Email: "alice@example.com", PasswordHash: hash}
	m.users.On("GetByEmail", ctx, "alice@example.com").Return(user, nil)

	svc := NewUserService(m.factory)
	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong")

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(false)

	m.users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, nil)

	svc := NewUserService(m.factory)
	_, err := svc.Authenticate(ctx, "ghost@example.com", "s3cret")

	// Same error as a wrong password, nothing leaks about which field failed
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

func TestGetCurrentUser_MissingUser(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(false)

	m.users.On("GetByID", ctx, "ghost").Return(nil, nil)

	svc := NewUserService(m.factory)
	user, err := svc.GetCurrentUser(ctx, "ghost")

	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUpdateUsername(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(true)

	m.users.On("GetByUsername", ctx, "alice").Return(nil, nil)
	m.users.On("UpdateUsername", ctx, "user-1", "alice").Return(nil)

	svc := NewUserService(m.factory)
	err := svc.UpdateUsername(ctx, "user-1", "alice")

	require.NoError(t, err)
	m.users.AssertExpectations(t)
	m.uow.AssertExpectations(t)
}

func TestUpdateUsername_TooShort(t *testing.T) {
	m := newServiceMocks()

	svc := NewUserService(m.factory)
	err := svc.UpdateUsername(context.Background(), "user-1", "al")

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	m.factory.AssertNotCalled(t, "Create")
}

func TestUpdateUsername_AlreadyTaken(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(false)

	name := "alice"
	holder := &models.User{ID: "user-2", Email: "other@example.com", Username: &name}
	m.users.On("GetByUsername", ctx, "alice").Return(holder, nil)

	svc := NewUserService(m.factory)
	err := svc.UpdateUsername(ctx, "user-1", "alice")

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	m.users.AssertNotCalled(t, "UpdateUsername", mock.Anything, mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestUpdateUsername_ReclaimOwnName(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(true)

	name := "alice"
	holder := &models.User{ID: "user-1", Email: "alice@example.com", Username: &name}
	m.users.On("GetByUsername", ctx, "alice").Return(holder, nil)
	m.users.On("UpdateUsername", ctx, "user-1", "alice").Return(nil)

	svc := NewUserService(m.factory)
	err := svc.UpdateUsername(ctx, "user-1", "alice")

	require.NoError(t, err)
}
