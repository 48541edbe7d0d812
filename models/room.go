package models

import (
	"time"
)

// Room is a named ledger group joined through its invite code
type Room struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	InviteCode string    `db:"invite_code" json:"inviteCode"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// RoomWithRole annotates a room with the caller's membership role,
// as returned by the my-rooms listing
type RoomWithRole struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	InviteCode string `json:"inviteCode"`
	Role       Role   `json:"role"`
}

// RoomDetail is the full room view: the caller's role, the resolved owner
// and the member podium ordered by balance descending
type RoomDetail struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	InviteCode string        `json:"inviteCode"`
	Role       Role          `json:"role"`
	OwnerID    string        `json:"ownerId"`
	Members    []*RoomMember `json:"members"`
}
