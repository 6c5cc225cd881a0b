// internal/handlers/leaderboard.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sweeper/internal/auth"
	"github.com/jason-s-yu/sweeper/internal/models"
	"github.com/jason-s-yu/sweeper/internal/room"
	"github.com/sirupsen/logrus"
)

// Leaderboard sizes.
const (
	GlobalLimit        = 50
	PerDifficultyLimit = 10
)

// LeaderboardStore reads and writes game history.
type LeaderboardStore interface {
	TopScores(ctx context.Context, difficulty string, limit int) ([]models.LeaderboardEntry, error)
	InsertGameRecords(ctx context.Context, records []models.GameRecord) error
}

type leaderboardResponse struct {
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
}

// LeaderboardHandler serves GET /api/leaderboard/global?difficulty=. Without a difficulty,
// or with "all", it returns the overall top scores; otherwise the top scores for that label.
func LeaderboardHandler(logger *logrus.Logger, store LeaderboardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if store == nil {
			writeError(w, http.StatusServiceUnavailable, "leaderboard unavailable")
			return
		}

		difficulty := strings.TrimSpace(r.URL.Query().Get("difficulty"))
		limit := PerDifficultyLimit
		if difficulty == "" || strings.EqualFold(difficulty, "all") {
			difficulty, limit = "", GlobalLimit
		}
		if len(difficulty) > 32 {
			writeError(w, http.StatusBadRequest, "invalid difficulty")
			return
		}

		entries, err := store.TopScores(r.Context(), difficulty, limit)
		if err != nil {
			logger.Errorf("failed to load leaderboard: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
			return
		}
		if entries == nil {
			entries = []models.LeaderboardEntry{}
		}
		writeJSON(w, http.StatusOK, leaderboardResponse{Leaderboard: entries})
	}
}

type submitScoreRequest struct {
	Username   string  `json:"username"`
	Score      int     `json:"score"`
	Time       float64 `json:"time"`
	Difficulty string  `json:"difficulty"`
	HintsUsed  int     `json:"hints_used"`
	GameMode   string  `json:"game_mode"`
}

type submitScoreResponse struct {
	Success bool              `json:"success"`
	Entry   models.GameRecord `json:"entry"`
}

// SubmitScoreHandler serves POST /api/leaderboard/submit for single-player results. A valid
// auth token credits the result to the account.
func SubmitScoreHandler(logger *logrus.Logger, store LeaderboardStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if store == nil {
			writeError(w, http.StatusServiceUnavailable, "leaderboard unavailable")
			return
		}

		var req submitScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		name, err := room.NormalizeUsername(req.Username)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Score < 0 || req.Time < 0 || req.HintsUsed < 0 {
			writeError(w, http.StatusBadRequest, "score, time and hints_used must not be negative")
			return
		}
		difficulty := strings.TrimSpace(req.Difficulty)
		if difficulty == "" || len(difficulty) > 32 {
			writeError(w, http.StatusBadRequest, "invalid difficulty")
			return
		}
		mode := strings.TrimSpace(req.GameMode)
		if mode == "" {
			mode = "standard"
		}

		rec := models.GameRecord{
			ID:          uuid.New(),
			Username:    name,
			GameMode:    mode,
			Difficulty:  difficulty,
			Score:       req.Score,
			TimeSeconds: req.Time,
			HintsUsed:   req.HintsUsed,
			CreatedAt:   time.Now().UTC(),
		}
		if token := tokenFromRequest(r); token != "" {
			if claims, err := auth.AuthenticateJWT(token); err == nil {
				if id, err := claims.UserID(); err == nil {
					rec.UserID = &id
				}
			}
		}

		if err := store.InsertGameRecords(r.Context(), []models.GameRecord{rec}); err != nil {
			logger.Errorf("failed to store score for %s: %v", name, err)
			writeError(w, http.StatusInternalServerError, "failed to store score")
			return
		}
		writeJSON(w, http.StatusCreated, submitScoreResponse{Success: true, Entry: rec})
	}
}
