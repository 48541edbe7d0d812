package models

import (
	"time"
)

// Role of a membership within a room
type Role string

const (
	RoleOwner  Role = "OWNER"
	RolePlayer Role = "PLAYER"
)

// Membership links a user to a room and carries the running balance.
// Unique per (user, room) pair.
type Membership struct {
	UserID    string    `db:"user_id" json:"userId"`
	RoomID    string    `db:"room_id" json:"roomId"`
	Role      Role      `db:"role" json:"role"`
	Balance   int64     `db:"balance" json:"balance"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// RoomMember is a membership joined with the member's identity fields,
// used for the room podium
type RoomMember struct {
	UserID   string  `json:"userId"`
	Email    string  `json:"email"`
	Username *string `json:"username"`
	Role     Role    `json:"role"`
	Balance  int64   `json:"balance"`
}
