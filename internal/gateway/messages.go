package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType is the "type" field of an inbound message.
type MessageType string

const (
	MsgCreateRoom   MessageType = "create_room"
	MsgJoinRoom     MessageType = "join_room"
	MsgLeaveRoom    MessageType = "leave_room"
	MsgPlayerReady  MessageType = "player_ready"
	MsgGameAction   MessageType = "game_action"
	MsgGameFinished MessageType = "game_finished"
)

// Inbound is the union of every message a client may send.
type Inbound struct {
	Type MessageType `json:"type"`

	// create_room, join_room
	Username   string `json:"username,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	MaxPlayers *int   `json:"max_players,omitempty"`
	GameMode   string `json:"game_mode,omitempty"`
	RoomCode   string `json:"room_code,omitempty"`

	// game_action
	Action string `json:"action,omitempty"`
	Row    *int   `json:"row,omitempty"`
	Col    *int   `json:"col,omitempty"`
	Clicks int    `json:"clicks,omitempty"`

	// game_finished
	Score int     `json:"score,omitempty"`
	Time  float64 `json:"time,omitempty"`
}

var ErrMalformedMessage = errors.New("malformed message")

// DecodeInbound parses one text frame.
func DecodeInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if in.Type == "" {
		return Inbound{}, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}
	return in, nil
}
