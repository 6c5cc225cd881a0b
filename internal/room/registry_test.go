package room

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCodes returns codes in order, repeating the last one forever.
func scriptedCodes(codes ...string) func() (string, error) {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		c := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return c, nil
	}
}

func TestCreateRetriesOnCollision(t *testing.T) {
	reg, _ := newTestRegistry()
	reg.codeFn = scriptedCodes("111111", "111111", "111111", "222222")

	first, err := reg.Create(uuid.New(), "A", Options{})
	require.NoError(t, err)
	assert.Equal(t, "111111", first.Code)

	second, err := reg.Create(uuid.New(), "B", Options{})
	require.NoError(t, err)
	assert.Equal(t, "222222", second.Code)
	assert.Equal(t, 2, reg.Len())
}

func TestCreateGivesUpWhenCodesRunOut(t *testing.T) {
	reg, _ := newTestRegistry()
	reg.codeFn = scriptedCodes("333333")
	reg.codeAttempts = 5

	_, err := reg.Create(uuid.New(), "A", Options{})
	require.NoError(t, err)
	_, err = reg.Create(uuid.New(), "B", Options{})
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
	assert.Equal(t, 1, reg.Len())

	boom := errors.New("entropy unavailable")
	reg.codeFn = func() (string, error) { return "", boom }
	_, err = reg.Create(uuid.New(), "C", Options{})
	assert.ErrorIs(t, err, boom)
}

func TestLastLeaveDestroysRoom(t *testing.T) {
	reg, r, ids, _ := setupRoom(t, ModeStandard, 2, "A")

	got, err := reg.Get(r.Code)
	require.NoError(t, err)
	assert.Same(t, r, got)

	assert.False(t, reg.RemoveIfEmpty(r.Code), "occupied rooms stay registered")

	remaining, err := r.Leave(ids[0], true)
	require.NoError(t, err)
	assert.Zero(t, remaining)
	assert.True(t, reg.RemoveIfEmpty(r.Code))

	_, err = reg.Get(r.Code)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Zero(t, reg.Len())
	assert.False(t, reg.RemoveIfEmpty(r.Code))

	// A caller still holding the pointer cannot revive the room.
	assert.ErrorIs(t, r.Join(uuid.New(), "late"), ErrRoomNotFound)
}

func TestRejoinBeforeRemovalKeepsRoom(t *testing.T) {
	reg, r, ids, _ := setupRoom(t, ModeStandard, 2, "A")

	_, err := r.Leave(ids[0], false)
	require.NoError(t, err)
	require.NoError(t, r.Join(uuid.New(), "B"))

	assert.False(t, reg.RemoveIfEmpty(r.Code))
	_, err = reg.Get(r.Code)
	assert.NoError(t, err)
}

func TestCloseDropsEveryRoom(t *testing.T) {
	reg, r, _, _ := setupRoom(t, ModeStandard, 3, "A", "B")
	_, err := reg.Create(uuid.New(), "C", Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Close())
	assert.Zero(t, reg.Len())
	assert.Empty(t, reg.ListWaiting())
	assert.ErrorIs(t, r.Join(uuid.New(), "D"), ErrRoomNotFound)
	assert.Zero(t, reg.Close())
}

func TestListWaiting(t *testing.T) {
	reg, _ := newTestRegistry()

	open, err := reg.Create(uuid.New(), "open", Options{MaxPlayers: 3})
	require.NoError(t, err)

	full, err := reg.Create(uuid.New(), "full", Options{MaxPlayers: 2})
	require.NoError(t, err)
	require.NoError(t, full.Join(uuid.New(), "x"))

	playing, err := reg.Create(uuid.New(), "playing", Options{MaxPlayers: 3})
	require.NoError(t, err)
	second := uuid.New()
	require.NoError(t, playing.Join(second, "y"))
	require.NoError(t, playing.MarkReady(playing.HostID))
	require.NoError(t, playing.MarkReady(second))

	// Full rooms are still waiting and stay listed; the match in progress is not.
	list := reg.ListWaiting()
	require.Len(t, list, 2)
	byCode := map[string]Summary{}
	for _, s := range list {
		assert.Equal(t, StatusWaiting, s.Status)
		byCode[s.Code] = s
	}
	require.Contains(t, byCode, open.Code)
	assert.Equal(t, "open", byCode[open.Code].Host)
	assert.Equal(t, 1, byCode[open.Code].PlayerCount)

	require.Contains(t, byCode, full.Code)
	assert.Equal(t, 2, byCode[full.Code].PlayerCount)
	assert.Equal(t, 2, byCode[full.Code].MaxPlayers)
	assert.NotContains(t, byCode, playing.Code)
}

func TestConcurrentCreatesGetDistinctCodes(t *testing.T) {
	reg, _ := newTestRegistry()

	const n = 200
	codes := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := reg.Create(uuid.New(), "p", Options{})
			if assert.NoError(t, err) {
				codes <- r.Code
			}
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for c := range codes {
		_, err := ValidateCode(c)
		assert.NoError(t, err)
		assert.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, reg.Len())
}

func TestValidateCode(t *testing.T) {
	code, err := ValidateCode(" 012345 ")
	require.NoError(t, err)
	assert.Equal(t, "012345", code)

	for _, bad := range []string{"", "12345", "1234567", "12a456", "abcdef"} {
		_, err := ValidateCode(bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}

	generated, err := GenerateCode()
	require.NoError(t, err)
	_, err = ValidateCode(generated)
	assert.NoError(t, err)
}
