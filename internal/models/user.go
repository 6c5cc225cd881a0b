package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"password,omitempty"`
	Username string    `json:"username"`

	IsGuest bool `json:"is_guest"`

	TotalGamesPlayed int `json:"total_games_played"`
	TotalWins        int `json:"total_wins"`
	TotalLosses      int `json:"total_losses"`
	HighestScore     int `json:"highest_score"`

	CreatedAt time.Time `json:"created_at"`
}
