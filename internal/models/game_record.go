package models

import (
	"time"

	"github.com/google/uuid"
)

// GameRecord is one player's result in one game, single or multiplayer. Multiplayer
// matches produce one record per participant, queued through Redis by the game server and
// written to Postgres by the historian.
type GameRecord struct {
	ID          uuid.UUID  `json:"id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"` // nil for guests
	Username    string     `json:"username"`
	GameMode    string     `json:"game_mode"`
	Difficulty  string     `json:"difficulty"`
	Score       int        `json:"score"`
	TimeSeconds float64    `json:"time_seconds"`
	HintsUsed   int        `json:"hints_used"`
	Won         bool       `json:"won"`
	RoomCode    string     `json:"room_code,omitempty"`
	Multiplayer bool       `json:"multiplayer"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LeaderboardEntry is one ranked row of the global leaderboard.
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	Username    string    `json:"username"`
	Score       int       `json:"score"`
	TimeSeconds float64   `json:"time"`
	Difficulty  string    `json:"difficulty"`
	GameMode    string    `json:"game_mode"`
	CreatedAt   time.Time `json:"created_at"`
}
