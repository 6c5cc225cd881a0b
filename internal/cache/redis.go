// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/sweeper/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list that carries finished game records to the historian.
const DefaultQueueName = "sweeper_game_records"

// ConnectRedis opens a client and checks it with a PING.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// RecordQueue is a FIFO of game records stored in a Redis list. The game server pushes,
// the historian pops.
type RecordQueue struct {
	rdb  *redis.Client
	name string
}

func NewRecordQueue(rdb *redis.Client, name string) *RecordQueue {
	if name == "" {
		name = DefaultQueueName
	}
	return &RecordQueue{rdb: rdb, name: name}
}

// Publish appends records to the queue in a single RPUSH.
func (q *RecordQueue) Publish(ctx context.Context, records ...models.GameRecord) error {
	if len(records) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal GameRecord: %w", err)
		}
		values = append(values, data)
	}
	if err := q.rdb.RPush(ctx, q.name, values...).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.name, err)
	}
	return nil
}

// Pop blocks up to timeout for the next record. It returns (nil, nil) when the wait
// expires with the queue empty.
func (q *RecordQueue) Pop(ctx context.Context, timeout time.Duration) (*models.GameRecord, error) {
	res, err := q.rdb.BLPop(ctx, timeout, q.name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("BLPOP %s: %w", q.name, err)
	}
	// res is [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BLPOP reply of length %d", len(res))
	}
	return DecodeRecord([]byte(res[1]))
}

// Len reports how many records are waiting.
func (q *RecordQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.name).Result()
}

// DecodeRecord parses one queued record.
func DecodeRecord(data []byte) (*models.GameRecord, error) {
	var rec models.GameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("malformed game record: %w", err)
	}
	if rec.Username == "" {
		return nil, fmt.Errorf("malformed game record: missing username")
	}
	return &rec, nil
}
