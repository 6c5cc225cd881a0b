package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/sweeper/internal/models"
)

// InsertGameRecords writes a batch of results in one transaction and folds them into the
// owning users' lifetime stats.
func InsertGameRecords(ctx context.Context, records []models.GameRecord) error {
	if len(records) == 0 {
		return nil
	}

	insertQ := `INSERT INTO game_history
		(id, user_id, username, game_mode, difficulty, score, time_seconds, hints_used, won, room_code, multiplayer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12)
		ON CONFLICT (id) DO NOTHING`
	statsQ := `UPDATE users SET
		total_games_played = total_games_played + 1,
		total_wins = total_wins + CASE WHEN $2 THEN 1 ELSE 0 END,
		total_losses = total_losses + CASE WHEN $2 THEN 0 ELSE 1 END,
		highest_score = GREATEST(highest_score, $3)
		WHERE id = $1`

	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i := range records {
			rec := &records[i]
			if rec.ID == uuid.Nil {
				rec.ID = uuid.New()
			}
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = time.Now()
			}
			batch.Queue(insertQ,
				rec.ID, rec.UserID, rec.Username, rec.GameMode, rec.Difficulty,
				rec.Score, rec.TimeSeconds, rec.HintsUsed, rec.Won, rec.RoomCode,
				rec.Multiplayer, rec.CreatedAt,
			)
			if rec.UserID != nil {
				batch.Queue(statsQ, *rec.UserID, rec.Won, rec.Score)
			}
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting %d game records: %w", len(records), err)
		}
		return nil
	})
}

// TopScores returns the best results, highest score first and faster time on ties.
// An empty difficulty ranks across all difficulties.
func TopScores(ctx context.Context, difficulty string, limit int) ([]models.LeaderboardEntry, error) {
	q := `SELECT username, score, time_seconds, difficulty, game_mode, created_at
		FROM game_history
		WHERE ($1 = '' OR LOWER(difficulty) = LOWER($1))
		ORDER BY score DESC, time_seconds ASC, created_at ASC
		LIMIT $2`

	rows, err := DB.Query(ctx, q, difficulty, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var out []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Score, &e.TimeSeconds, &e.Difficulty, &e.GameMode, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Rank = len(out) + 1
		out = append(out, e)
	}
	return out, rows.Err()
}

// History adapts the package-level functions to the interfaces the historian and the
// leaderboard handlers consume.
type History struct{}

func (History) InsertGameRecords(ctx context.Context, records []models.GameRecord) error {
	return InsertGameRecords(ctx, records)
}

func (History) TopScores(ctx context.Context, difficulty string, limit int) ([]models.LeaderboardEntry, error) {
	return TopScores(ctx, difficulty, limit)
}
