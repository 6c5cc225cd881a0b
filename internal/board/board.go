// internal/board/board.go
package board

import (
	"errors"
	"fmt"
	"math/rand"
)

const (
	MinDimension = 5
	MaxDimension = 64

	// MaxMineRatio caps the mine count at half the cells so placement always terminates quickly.
	MaxMineRatio = 0.5
)

// ErrInvalidDimensions is returned by Generate for sizes outside [MinDimension, MaxDimension].
var ErrInvalidDimensions = errors.New("board dimensions out of range")

// ErrTooManyMines is returned by Generate when the mine count exceeds MaxMineRatio of the cells.
var ErrTooManyMines = errors.New("too many mines for board size")

// Outcome is the result of revealing a single cell.
type Outcome string

const (
	Opened      Outcome = "opened"
	Exploded    Outcome = "exploded"
	AlreadyOpen Outcome = "already_open"
)

// Cell holds the state of a single square.
type Cell struct {
	IsMine        bool `json:"is_mine"`
	IsRevealed    bool `json:"is_revealed"`
	IsFlagged     bool `json:"is_flagged"`
	NeighborCount int  `json:"neighbor_count"`
}

// Board is a minesweeper grid. Cells are indexed [y][x]; y is the row and x the column.
type Board struct {
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	MineCount int      `json:"mine_count"`
	Seed      int64    `json:"seed"`
	Cells     [][]Cell `json:"cells"`

	exploded bool
	revealed int
}

// Generate builds a board whose mine layout is fully determined by seed, so every client
// holding the same seed derives the identical board.
func Generate(seed int64, width, height, mineCount int) (*Board, error) {
	if width < MinDimension || height < MinDimension || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d (allowed %d..%d)", ErrInvalidDimensions, width, height, MinDimension, MaxDimension)
	}
	if mineCount < 0 || float64(mineCount) > float64(width*height)*MaxMineRatio {
		return nil, fmt.Errorf("%w: %d mines on %dx%d", ErrTooManyMines, mineCount, width, height)
	}

	cells := make([][]Cell, height)
	for y := range cells {
		cells[y] = make([]Cell, width)
	}
	b := &Board{
		Width:     width,
		Height:    height,
		MineCount: mineCount,
		Seed:      seed,
		Cells:     cells,
	}
	b.placeMines(rand.New(rand.NewSource(seed)))
	b.calculateNeighbors()
	return b, nil
}

func (b *Board) placeMines(rng *rand.Rand) {
	placed := 0
	for placed < b.MineCount {
		x := rng.Intn(b.Width)
		y := rng.Intn(b.Height)
		if !b.Cells[y][x].IsMine {
			b.Cells[y][x].IsMine = true
			placed++
		}
	}
}

func (b *Board) calculateNeighbors() {
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Cells[y][x].IsMine {
				continue
			}
			count := 0
			b.eachNeighbor(x, y, func(nx, ny int) {
				if b.Cells[ny][nx].IsMine {
					count++
				}
			})
			b.Cells[y][x].NeighborCount = count
		}
	}
}

func (b *Board) eachNeighbor(x, y int, fn func(nx, ny int)) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if b.InBounds(nx, ny) {
				fn(nx, ny)
			}
		}
	}
}

// InBounds reports whether (x, y) lies on the board.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// Reveal opens the cell at (x, y). Zero-count cells flood outwards to their neighbours.
// Flagged cells and cells outside the board are reported as AlreadyOpen and left untouched.
func (b *Board) Reveal(x, y int) Outcome {
	if !b.InBounds(x, y) {
		return AlreadyOpen
	}
	cell := &b.Cells[y][x]
	if cell.IsRevealed || cell.IsFlagged {
		return AlreadyOpen
	}
	if cell.IsMine {
		cell.IsRevealed = true
		b.exploded = true
		return Exploded
	}

	// iterative flood fill; recursion depth would otherwise grow with the board area
	stack := [][2]int{{x, y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c := &b.Cells[p[1]][p[0]]
		if c.IsRevealed || c.IsFlagged || c.IsMine {
			continue
		}
		c.IsRevealed = true
		b.revealed++
		if c.NeighborCount != 0 {
			continue
		}
		b.eachNeighbor(p[0], p[1], func(nx, ny int) {
			if !b.Cells[ny][nx].IsRevealed {
				stack = append(stack, [2]int{nx, ny})
			}
		})
	}
	return Opened
}

// ToggleFlag flips the flag on a hidden cell. Revealed cells cannot be flagged.
func (b *Board) ToggleFlag(x, y int) {
	if !b.InBounds(x, y) {
		return
	}
	cell := &b.Cells[y][x]
	if cell.IsRevealed {
		return
	}
	cell.IsFlagged = !cell.IsFlagged
}

// IsWon reports whether every safe cell has been revealed without an explosion.
func (b *Board) IsWon() bool {
	return !b.exploded && b.revealed == b.Width*b.Height-b.MineCount
}

// IsLost reports whether a mine has been revealed.
func (b *Board) IsLost() bool {
	return b.exploded
}
