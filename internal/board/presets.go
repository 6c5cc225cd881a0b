package board

import (
	"fmt"
	"strings"
)

// Difficulty describes a named board configuration. Rows map to Height and Cols to Width.
type Difficulty struct {
	Name  string `json:"name"`
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	Mines int    `json:"mines"`
}

// DefaultDifficulty is used when a room is created without one.
const DefaultDifficulty = "Medium"

var presets = map[string]Difficulty{
	"easy":   {Name: "Easy", Rows: 9, Cols: 9, Mines: 10},
	"medium": {Name: "Medium", Rows: 16, Cols: 16, Mines: 40},
	"hard":   {Name: "Hard", Rows: 16, Cols: 30, Mines: 99},
}

// LookupDifficulty resolves a difficulty label case-insensitively. An empty label resolves to
// DefaultDifficulty.
func LookupDifficulty(name string) (Difficulty, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = strings.ToLower(DefaultDifficulty)
	}
	d, ok := presets[key]
	if !ok {
		return Difficulty{}, fmt.Errorf("unknown difficulty %q", name)
	}
	return d, nil
}

// Generate builds the board for this difficulty from seed.
func (d Difficulty) Generate(seed int64) (*Board, error) {
	return Generate(seed, d.Cols, d.Rows, d.Mines)
}

// Contains reports whether the (row, col) pair addresses a cell of this difficulty's board.
func (d Difficulty) Contains(row, col int) bool {
	return row >= 0 && row < d.Rows && col >= 0 && col < d.Cols
}
