package session

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindLookupUnbind(t *testing.T) {
	d := NewDirectory(nil)
	conn := uuid.New()

	_, ok := d.Lookup(conn)
	assert.False(t, ok)

	d.Bind(conn, Entry{Username: "alice", RoomCode: "123456"})
	e, ok := d.Lookup(conn)
	require.True(t, ok)
	assert.Equal(t, "123456", e.RoomCode)
	assert.False(t, e.BoundAt.IsZero())

	// Rebinding moves the connection.
	d.Bind(conn, Entry{Username: "alice", RoomCode: "654321"})
	e, ok = d.Lookup(conn)
	require.True(t, ok)
	assert.Equal(t, "654321", e.RoomCode)
	assert.Equal(t, 1, d.Len())

	old, ok := d.Unbind(conn)
	require.True(t, ok)
	assert.Equal(t, "654321", old.RoomCode)

	_, ok = d.Unbind(conn)
	assert.False(t, ok, "second unbind is a no-op")
	assert.Zero(t, d.Len())
}

func TestConcurrentBinds(t *testing.T) {
	d := NewDirectory(nil)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		kept int
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := uuid.New()
			d.Bind(id, Entry{RoomCode: "000001"})
			_, ok := d.Lookup(id)
			assert.True(t, ok)
			if id[0]%2 == 0 {
				d.Unbind(id)
				return
			}
			mu.Lock()
			kept++
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, kept, d.Len())
}
