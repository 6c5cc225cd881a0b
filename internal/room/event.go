// internal/room/event.go
package room

import (
	"time"

	"github.com/google/uuid"
)

// EventType names an outbound message. The value is the "type" field on the wire.
type EventType string

const (
	EventConnected        EventType = "connected"           // greeting sent when a socket opens
	EventRoomCreated      EventType = "room_created"        // to the creator only
	EventRoomJoined       EventType = "room_joined"         // to the joining member only, carries room metadata
	EventPlayerJoined     EventType = "player_joined"       // to existing members, carries the roster
	EventLeftRoom         EventType = "left_room"           // ack to a member that left explicitly
	EventPlayerLeft       EventType = "player_left"         // to remaining members
	EventPlayerReady      EventType = "player_ready_update" // roster + all_ready
	EventGameStart        EventType = "game_start"          // board seed, mode, initial turn
	EventPlayerAction     EventType = "player_action"       // relayed reveal/flag, never echoed to the sender
	EventTurnChanged      EventType = "turn_changed"        // luck mode only
	EventPlayerEliminated EventType = "player_eliminated"   // optional winner
	EventPlayerFinished   EventType = "player_finished"     // progress update
	EventGameEnded        EventType = "game_ended"          // ranked results
	EventError            EventType = "error"
)

// PlayerView is the wire representation of a Player.
type PlayerView struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Ready      bool      `json:"ready"`
	Score      int       `json:"score"`
	Time       float64   `json:"time"`
	Finished   bool      `json:"finished"`
	Eliminated bool      `json:"eliminated"`
}

// Event is an outbound message. Only the fields relevant to Type are populated.
type Event struct {
	Type EventType `json:"type"`

	SessionID  *uuid.UUID `json:"session_id,omitempty"`
	RoomCode   string     `json:"room_code,omitempty"`
	Host       string     `json:"host,omitempty"`
	Difficulty string     `json:"difficulty,omitempty"`
	GameMode   Mode       `json:"game_mode,omitempty"`
	MaxPlayers int        `json:"max_players,omitempty"`

	Username         string       `json:"username,omitempty"`
	Players          []PlayerView `json:"players,omitempty"`
	PlayersRemaining *int         `json:"players_remaining,omitempty"`
	AllReady         *bool        `json:"all_ready,omitempty"`

	BoardSeed     *int64     `json:"board_seed,omitempty"`
	CurrentTurn   string     `json:"current_turn,omitempty"`
	CurrentTurnID *uuid.UUID `json:"current_turn_id,omitempty"`

	Action ActionType `json:"action,omitempty"`
	Row    *int       `json:"row,omitempty"`
	Col    *int       `json:"col,omitempty"`

	Score *int     `json:"score,omitempty"`
	Time  *float64 `json:"time,omitempty"`

	Winner  string       `json:"winner,omitempty"`
	Results []PlayerView `json:"results,omitempty"`

	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorEvent builds the error message returned to a single caller.
func ErrorEvent(err error) Event {
	return Event{Type: EventError, Message: err.Error()}
}

// ConnectedEvent greets a freshly opened connection with its identity.
func ConnectedEvent(sessionID uuid.UUID) Event {
	return Event{Type: EventConnected, SessionID: &sessionID}
}

// MatchSummary describes a finished match. It is handed to Room.OnMatchEnd.
type MatchSummary struct {
	RoomCode   string
	GameMode   Mode
	Difficulty string
	WinnerID   uuid.UUID // uuid.Nil when there is no single winner
	Results    []PlayerView
	EndedAt    time.Time
}

func intPtr(v int) *int              { return &v }
func boolPtr(v bool) *bool           { return &v }
func int64Ptr(v int64) *int64        { return &v }
func floatPtr(v float64) *float64    { return &v }
func uuidPtr(v uuid.UUID) *uuid.UUID { return &v }
