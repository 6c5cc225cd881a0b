package room

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	DefaultUsername   = "Player"
	MaxUsernameLength = 20
)

// Player is one member of a room. The ID is scoped to the member's connection.
type Player struct {
	ID         uuid.UUID
	Name       string
	Ready      bool
	Score      int
	Time       float64
	Finished   bool
	Eliminated bool
}

func newPlayer(id uuid.UUID, name string) *Player {
	return &Player{ID: id, Name: name}
}

// resetMatchState clears everything a match writes; membership is kept.
func (p *Player) resetMatchState() {
	p.Ready = false
	p.Score = 0
	p.Time = 0
	p.Finished = false
	p.Eliminated = false
}

func (p *Player) view() PlayerView {
	return PlayerView{
		ID:         p.ID,
		Username:   p.Name,
		Ready:      p.Ready,
		Score:      p.Score,
		Time:       p.Time,
		Finished:   p.Finished,
		Eliminated: p.Eliminated,
	}
}

// NormalizeUsername trims the display name and applies the default for blank input.
func NormalizeUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultUsername, nil
	}
	if utf8.RuneCountInString(name) > MaxUsernameLength {
		return "", invalid("username", "must be at most %d characters", MaxUsernameLength)
	}
	return name, nil
}
