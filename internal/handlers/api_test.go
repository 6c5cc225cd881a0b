// internal/handlers/api_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jason-s-yu/sweeper/internal/auth"
	"github.com/jason-s-yu/sweeper/internal/database"
	"github.com/jason-s-yu/sweeper/internal/models"
	"github.com/jason-s-yu/sweeper/internal/room"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	inserted []models.GameRecord
	queries  []string
	limits   []int
	err      error
}

func (f *fakeHistory) TopScores(_ context.Context, difficulty string, limit int) ([]models.LeaderboardEntry, error) {
	f.queries = append(f.queries, difficulty)
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	var out []models.LeaderboardEntry
	for i, rec := range f.inserted {
		out = append(out, models.LeaderboardEntry{Rank: i + 1, Username: rec.Username, Score: rec.Score, Difficulty: rec.Difficulty})
	}
	return out, nil
}

func (f *fakeHistory) InsertGameRecords(_ context.Context, records []models.GameRecord) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, records...)
	return nil
}

type fakeUsers struct {
	byEmail map[string]models.User
	err     error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: make(map[string]models.User)}
}

func (f *fakeUsers) CreateUser(_ context.Context, u *models.User) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return &pgconn.PgError{Code: "23505"}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = *u
	return nil
}

func (f *fakeUsers) AuthenticateUser(_ context.Context, email, password string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok || u.Password != password {
		return nil, database.ErrInvalidCredentials
	}
	u.Password = ""
	return &u, nil
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	HealthHandler(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestListRoomsHandler(t *testing.T) {
	logger, _ := test.NewNullLogger()
	reg := room.NewRegistry(logger)
	_, err := reg.Create(uuid.New(), "alice", room.Options{Difficulty: "easy"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	ListRoomsHandler(reg)(w, httptest.NewRequest(http.MethodGet, "/api/rooms/list", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Rooms []room.Summary `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Rooms, 1)
	assert.Equal(t, "alice", body.Rooms[0].Host)
	assert.Equal(t, "Easy", body.Rooms[0].Difficulty)
	assert.Equal(t, 1, body.Rooms[0].PlayerCount)

	var raw struct {
		Rooms []map[string]any `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, body.Rooms[0].Code, raw.Rooms[0]["code"])
	assert.EqualValues(t, 1, raw.Rooms[0]["players"])
	assert.NotContains(t, raw.Rooms[0], "room_code")

	w = httptest.NewRecorder()
	ListRoomsHandler(reg)(w, httptest.NewRequest(http.MethodPost, "/api/rooms/list", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestLeaderboardLimits(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := &fakeHistory{}
	h := LeaderboardHandler(logger, store)

	for _, path := range []string{"/api/leaderboard/global", "/api/leaderboard/global?difficulty=all", "/api/leaderboard/global?difficulty=hard"} {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"leaderboard":[]}`, w.Body.String())
	}
	assert.Equal(t, []string{"", "", "hard"}, store.queries)
	assert.Equal(t, []int{GlobalLimit, GlobalLimit, PerDifficultyLimit}, store.limits)
}

func TestLeaderboardUnavailable(t *testing.T) {
	logger, _ := test.NewNullLogger()

	w := httptest.NewRecorder()
	LeaderboardHandler(logger, nil)(w, httptest.NewRequest(http.MethodGet, "/api/leaderboard/global", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	LeaderboardHandler(logger, &fakeHistory{err: errors.New("db down")})(w, httptest.NewRequest(http.MethodGet, "/api/leaderboard/global", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSubmitScore(t *testing.T) {
	require.NoError(t, auth.Init(time.Hour))
	logger, _ := test.NewNullLogger()
	store := &fakeHistory{}
	h := SubmitScoreHandler(logger, store)

	w := postJSON(t, h, "/api/leaderboard/submit", map[string]any{
		"username": "  alice ", "score": 120, "time": 42.5, "difficulty": "Hard", "hints_used": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, store.inserted, 1)
	rec := store.inserted[0]
	assert.Equal(t, "alice", rec.Username)
	assert.Equal(t, 120, rec.Score)
	assert.Equal(t, 42.5, rec.TimeSeconds)
	assert.Equal(t, 1, rec.HintsUsed)
	assert.Equal(t, "standard", rec.GameMode)
	assert.False(t, rec.Multiplayer)
	assert.Nil(t, rec.UserID)

	// A token credits the account.
	uid := uuid.New()
	token, err := auth.CreateJWT(uid, "alice")
	require.NoError(t, err)
	data, _ := json.Marshal(map[string]any{"username": "alice", "score": 5, "difficulty": "easy"})
	req := httptest.NewRequest(http.MethodPost, "/api/leaderboard/submit", bytes.NewReader(data))
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	w = httptest.NewRecorder()
	h(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, store.inserted[1].UserID)
	assert.Equal(t, uid, *store.inserted[1].UserID)

	lb := httptest.NewRecorder()
	LeaderboardHandler(logger, store)(lb, httptest.NewRequest(http.MethodGet, "/api/leaderboard/global", nil))
	assert.Contains(t, lb.Body.String(), `"username":"alice"`)
}

func TestSubmitScoreRejectsBadInput(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := &fakeHistory{}
	h := SubmitScoreHandler(logger, store)

	cases := map[string]any{
		"negative score": map[string]any{"username": "a", "score": -1, "difficulty": "easy"},
		"no difficulty":  map[string]any{"username": "a", "score": 1},
		"long name":      map[string]any{"username": "abcdefghijklmnopqrstuvwxyz", "score": 1, "difficulty": "easy"},
		"wrong type":     map[string]any{"username": "a", "score": "lots", "difficulty": "easy"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := postJSON(t, h, "/api/leaderboard/submit", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Empty(t, store.inserted)
}

func TestCreateUserHandler(t *testing.T) {
	logger, _ := test.NewNullLogger()
	users := newFakeUsers()
	h := CreateUserHandler(logger, users)

	w := postJSON(t, h, "/user/create", map[string]string{
		"email": "Alice@Example.com", "username": "alice_1", "password": "Sweeper123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "Sweeper123")
	assert.Contains(t, users.byEmail, "alice@example.com")

	w = postJSON(t, h, "/user/create", map[string]string{
		"email": "alice@example.com", "username": "alice_2", "password": "Sweeper123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	for _, body := range []map[string]string{
		{"email": "not-an-email", "username": "bob", "password": "Sweeper123"},
		{"email": "bob@example.com", "username": "b!", "password": "Sweeper123"},
		{"email": "bob@example.com", "username": "bob", "password": "weak"},
	} {
		w = postJSON(t, h, "/user/create", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	users.err = errors.New("db down")
	w = postJSON(t, h, "/user/create", map[string]string{
		"email": "carol@example.com", "username": "carol", "password": "Sweeper123",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLoginHandler(t *testing.T) {
	require.NoError(t, auth.Init(time.Hour))
	logger, _ := test.NewNullLogger()
	users := newFakeUsers()
	require.Equal(t, http.StatusCreated, postJSON(t, CreateUserHandler(logger, users), "/user/create", map[string]string{
		"email": "alice@example.com", "username": "alice", "password": "Sweeper123",
	}).Code)

	h := LoginHandler(logger, users, time.Hour)
	w := postJSON(t, h, "/user/login", map[string]string{"email": "alice@example.com", "password": "Sweeper123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	claims, err := auth.AuthenticateJWT(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Equal(t, resp.Token, cookies[0].Value)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	w = postJSON(t, h, "/user/login", map[string]string{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
