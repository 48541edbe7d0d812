package models

import (
	"time"
)

// Result of a single round entry
type Result string

const (
	ResultWin  Result = "WIN"
	ResultLoss Result = "LOSS"
	ResultDraw Result = "DRAW"
)

// Valid reports whether the result is one of the known outcomes
func (r Result) Valid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultDraw:
		return true
	}
	return false
}

// Entry is one player's recorded outcome for one round within a game
// session. Entries are append-only and never mutated.
type Entry struct {
	ID            string    `db:"id" json:"id"`
	GameSessionID string    `db:"game_session_id" json:"gameSessionId"`
	UserID        string    `db:"user_id" json:"userId"`
	Amount        int64     `db:"amount" json:"amount"`
	Result        Result    `db:"result" json:"result"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// RoundEntry is the submitted form of an entry before persistence
type RoundEntry struct {
	UserID string `json:"userId"`
	Amount int64  `json:"amount"`
	Result Result `json:"result"`
}

// BalanceDelta returns the signed balance change this entry applies:
// +amount for a win, -amount for a loss, zero for a draw
func (e RoundEntry) BalanceDelta() int64 {
	switch e.Result {
	case ResultWin:
		return e.Amount
	case ResultLoss:
		return -e.Amount
	default:
		return 0
	}
}
