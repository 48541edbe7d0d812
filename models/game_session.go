package models

import (
	"time"
)

// GameSession is one sitting of play within a room, grouping round entries
type GameSession struct {
	ID        string    `db:"id" json:"id"`
	RoomID    string    `db:"room_id" json:"roomId"`
	StartedAt time.Time `db:"started_at" json:"date"`
}
