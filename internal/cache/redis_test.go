package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sweeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecord(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"username":"bob","game_mode":"luck","difficulty":"Hard","score":12,"won":true,"multiplayer":true,"room_code":"004211"}`))
	require.NoError(t, err)
	assert.Equal(t, "bob", rec.Username)
	assert.True(t, rec.Won)
	assert.Nil(t, rec.UserID)
	assert.Equal(t, "004211", rec.RoomCode)

	_, err = DecodeRecord([]byte(`{"score":1}`))
	assert.Error(t, err)
	_, err = DecodeRecord([]byte(`not json`))
	assert.Error(t, err)
}

func TestNewRecordQueueDefaultsName(t *testing.T) {
	q := NewRecordQueue(nil, "")
	assert.Equal(t, DefaultQueueName, q.name)
}

// TestRecordQueueRoundTrip needs a local Redis; it is skipped when none is reachable.
func TestRecordQueueRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb, err := ConnectRedis(ctx, "localhost:6379", 15)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	defer rdb.Close()

	q := NewRecordQueue(rdb, "test_records_"+uuid.NewString())
	defer rdb.Del(context.Background(), q.name)

	require.NoError(t, q.Publish(ctx,
		models.GameRecord{ID: uuid.New(), Username: "alice", Score: 3},
		models.GameRecord{ID: uuid.New(), Username: "bob", Score: 1},
	))
	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	first, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "alice", first.Username)

	second, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "bob", second.Username)

	empty, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Nil(t, empty)
}
