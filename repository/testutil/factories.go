package testutil

import (
	"github.com/google/uuid"

	"tally/models"
)

// CreateTestUser builds a user with default values. The hash is a bcrypt
// digest of "password"; repository tests never verify it.
func CreateTestUser(email string) *models.User {
	return &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "$2a$14$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
	}
}

// CreateTestUserWithUsername builds a user that already claimed a username
func CreateTestUserWithUsername(email, username string) *models.User {
	user := CreateTestUser(email)
	user.Username = &username
	return user
}

// CreateTestRoom builds a room with a random invite code
func CreateTestRoom(name string) *models.Room {
	return &models.Room{
		ID:         uuid.NewString(),
		Name:       name,
		InviteCode: uuid.New().String()[:8],
	}
}

// CreateTestMembership builds a membership with the default starting balance
func CreateTestMembership(userID, roomID string, role models.Role) *models.Membership {
	return &models.Membership{
		UserID:  userID,
		RoomID:  roomID,
		Role:    role,
		Balance: 2000,
	}
}

// CreateTestGameSession builds a game session for a room
func CreateTestGameSession(roomID string) *models.GameSession {
	return &models.GameSession{
		ID:     uuid.NewString(),
		RoomID: roomID,
	}
}

// CreateTestEntry builds a round entry record
func CreateTestEntry(gameSessionID, userID string, amount int64, result models.Result) *models.Entry {
	return &models.Entry{
		ID:            uuid.NewString(),
		GameSessionID: gameSessionID,
		UserID:        userID,
		Amount:        amount,
		Result:        result,
	}
}
