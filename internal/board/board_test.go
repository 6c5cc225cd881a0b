package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countMines(b *Board) int {
	n := 0
	for y := range b.Cells {
		for x := range b.Cells[y] {
			if b.Cells[y][x].IsMine {
				n++
			}
		}
	}
	return n
}

// TestGenerateIsDeterministic checks that two boards from the same seed are identical.
func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(424242, 16, 16, 40)
	require.NoError(t, err)
	b, err := Generate(424242, 16, 16, 40)
	require.NoError(t, err)

	assert.Equal(t, a.Cells, b.Cells)
	assert.Equal(t, 40, countMines(a))

	c, err := Generate(1, 16, 16, 40)
	require.NoError(t, err)
	assert.NotEqual(t, a.Cells, c.Cells, "different seeds should produce different layouts")
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, err := Generate(1, 4, 10, 1)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = Generate(1, 10, 65, 1)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = Generate(1, 10, 10, 51)
	assert.ErrorIs(t, err, ErrTooManyMines)
}

func TestNeighborCounts(t *testing.T) {
	b, err := Generate(7, 9, 9, 10)
	require.NoError(t, err)

	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Cells[y][x].IsMine {
				continue
			}
			want := 0
			b.eachNeighbor(x, y, func(nx, ny int) {
				if b.Cells[ny][nx].IsMine {
					want++
				}
			})
			assert.Equal(t, want, b.Cells[y][x].NeighborCount, "cell (%d,%d)", x, y)
		}
	}
}

// TestRevealFloodFillAndWin opens every safe cell on a mine-free board with one reveal.
func TestRevealFloodFillAndWin(t *testing.T) {
	b, err := Generate(99, 5, 5, 0)
	require.NoError(t, err)

	assert.Equal(t, Opened, b.Reveal(2, 2))
	assert.True(t, b.IsWon())
	assert.False(t, b.IsLost())
	assert.Equal(t, AlreadyOpen, b.Reveal(0, 0))
}

func TestRevealMineExplodes(t *testing.T) {
	b, err := Generate(5, 9, 9, 10)
	require.NoError(t, err)

	var mx, my int
	for y := range b.Cells {
		for x := range b.Cells[y] {
			if b.Cells[y][x].IsMine {
				mx, my = x, y
			}
		}
	}
	assert.Equal(t, Exploded, b.Reveal(mx, my))
	assert.True(t, b.IsLost())
	assert.False(t, b.IsWon())
}

func TestFlagBlocksReveal(t *testing.T) {
	b, err := Generate(3, 5, 5, 0)
	require.NoError(t, err)

	b.ToggleFlag(0, 0)
	require.True(t, b.Cells[0][0].IsFlagged)

	assert.Equal(t, AlreadyOpen, b.Reveal(0, 0))
	assert.False(t, b.Cells[0][0].IsRevealed)

	b.ToggleFlag(0, 0)
	assert.False(t, b.Cells[0][0].IsFlagged)

	// out of bounds is a no-op
	b.ToggleFlag(-1, 9)
	assert.Equal(t, AlreadyOpen, b.Reveal(10, 10))
}

func TestLookupDifficulty(t *testing.T) {
	d, err := LookupDifficulty("")
	require.NoError(t, err)
	assert.Equal(t, "Medium", d.Name)

	d, err = LookupDifficulty("HARD")
	require.NoError(t, err)
	assert.Equal(t, 30, d.Cols)
	assert.True(t, d.Contains(15, 29))
	assert.False(t, d.Contains(16, 0))

	_, err = LookupDifficulty("nightmare")
	assert.Error(t, err)

	b, err := d.Generate(11)
	require.NoError(t, err)
	assert.Equal(t, 99, countMines(b))
}
