package handlers

import (
	"net/http"
	"time"

	"github.com/jason-s-yu/sweeper/internal/room"
)

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type roomListResponse struct {
	Rooms []room.Summary `json:"rooms"`
}

// ListRoomsHandler returns the rooms that can still be joined.
func ListRoomsHandler(reg *room.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, roomListResponse{Rooms: reg.ListWaiting()})
	}
}
