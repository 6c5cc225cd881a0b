package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jason-s-yu/sweeper/internal/auth"
	"github.com/jason-s-yu/sweeper/internal/database"
	"github.com/jason-s-yu/sweeper/internal/models"
	"github.com/sirupsen/logrus"
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	AuthenticateUser(ctx context.Context, email, password string) (*models.User, error)
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type userResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
}

// CreateUserHandler registers an account. Duplicate emails or usernames answer 409.
func CreateUserHandler(logger *logrus.Logger, store UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if store == nil {
			writeError(w, http.StatusServiceUnavailable, "accounts unavailable")
			return
		}

		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		req.Username = strings.TrimSpace(req.Username)

		for _, err := range []error{
			auth.ValidateEmail(req.Email),
			auth.ValidateUsername(req.Username),
			auth.ValidatePassword(req.Password),
		} {
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		user := models.User{Email: req.Email, Password: req.Password, Username: req.Username}
		if err := store.CreateUser(r.Context(), &user); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				writeError(w, http.StatusConflict, "email or username already exists")
				return
			}
			logger.Errorf("failed to create user: %v", err)
			writeError(w, http.StatusInternalServerError, "error creating user")
			return
		}
		user.Password = ""
		writeJSON(w, http.StatusCreated, userResponse{Success: true, User: &user})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// LoginHandler checks the credentials and issues a session token.
//
// Request payload:
//
//	{
//	  "email": "someone@example.com",
//	  "password": "password"
//	}
//
// Response payload:
//
//	{
//	  "success": true,
//	  "token": "{jwt}",
//	  "user": {...}
//	}
//
// The token is also set as the auth_token cookie.
func LoginHandler(logger *logrus.Logger, store UserStore, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if store == nil {
			writeError(w, http.StatusServiceUnavailable, "accounts unavailable")
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request payload")
			return
		}

		user, err := store.AuthenticateUser(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)), req.Password)
		if errors.Is(err, database.ErrInvalidCredentials) {
			writeError(w, http.StatusForbidden, "authentication failed")
			return
		}
		if err != nil {
			logger.Errorf("failed to authenticate user: %v", err)
			writeError(w, http.StatusInternalServerError, "authentication failed")
			return
		}

		token, err := auth.CreateJWT(user.ID, user.Username)
		if err != nil {
			logger.Errorf("failed to issue token: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to issue token")
			return
		}

		cookie := &http.Cookie{
			Name:     auth.CookieName,
			Value:    token,
			HttpOnly: true,
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
		}
		if ttl > 0 {
			cookie.MaxAge = int(ttl.Seconds())
		}
		http.SetCookie(w, cookie)

		writeJSON(w, http.StatusOK, loginResponse{Success: true, Token: token, User: user})
	}
}
