// internal/gateway/gateway.go
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sweeper/internal/models"
	"github.com/jason-s-yu/sweeper/internal/room"
	"github.com/jason-s-yu/sweeper/internal/session"
	"github.com/sirupsen/logrus"
)

// MatchRecorder receives one record per participant of every finished match.
type MatchRecorder interface {
	Publish(ctx context.Context, records ...models.GameRecord) error
}

// Gateway routes inbound messages from connections to rooms and delivers room events back
// to connections. It holds no match state of its own.
//
// Locks: a room may call deliver and recordMatch while holding its own lock, so the
// gateway never calls into a room while holding mu.
type Gateway struct {
	rooms    *room.Registry
	sessions *session.Directory
	recorder MatchRecorder
	log      *logrus.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]*Client

	outboxSize    int
	recordTimeout time.Duration
	pending       sync.WaitGroup
}

// New wires the registry's delivery and match-end hooks to the gateway. recorder may be
// nil, in which case finished matches are not persisted.
func New(logger *logrus.Logger, rooms *room.Registry, sessions *session.Directory, recorder MatchRecorder, outboxSize int) *Gateway {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	g := &Gateway{
		rooms:         rooms,
		sessions:      sessions,
		recorder:      recorder,
		log:           logger,
		clients:       make(map[uuid.UUID]*Client),
		outboxSize:    outboxSize,
		recordTimeout: 5 * time.Second,
	}
	rooms.SendFn = g.deliver
	rooms.OnMatchEnd = g.recordMatch
	return g
}

// Connect registers a new connection and greets it with its session id.
func (g *Gateway) Connect(connID, userID uuid.UUID) *Client {
	c := newClient(connID, userID, g.outboxSize)
	g.mu.Lock()
	g.clients[connID] = c
	g.mu.Unlock()

	c.Write(room.ConnectedEvent(connID))
	g.log.Debugf("Gateway: connection %s opened (user %s)", connID, userID)
	return c
}

// Disconnect removes the connection from its room, if any, and closes its outbox.
func (g *Gateway) Disconnect(connID uuid.UUID) {
	if entry, ok := g.sessions.Unbind(connID); ok {
		g.leaveRoom(connID, entry.RoomCode, false)
	}

	g.mu.Lock()
	c, ok := g.clients[connID]
	delete(g.clients, connID)
	g.mu.Unlock()

	if ok {
		if n := c.Dropped(); n > 0 {
			g.log.Warnf("Gateway: connection %s dropped %d events on a full outbox", connID, n)
		}
		c.Close()
	}
	g.log.Debugf("Gateway: connection %s closed", connID)
}

// Handle applies one inbound message. Failures are reported to the sender as an error
// event; messages from connections outside any room are ignored.
func (g *Gateway) Handle(connID uuid.UUID, in Inbound) {
	c := g.client(connID)
	if c == nil {
		return
	}

	err := g.dispatch(c, in)
	switch {
	case err == nil:
	case errors.Is(err, room.ErrUnknownSession):
		g.log.Debugf("Gateway: ignoring %s from %s outside a room", in.Type, connID)
	default:
		g.log.Debugf("Gateway: %s from %s rejected: %v", in.Type, connID, err)
		c.Write(room.ErrorEvent(err))
	}
}

func (g *Gateway) dispatch(c *Client, in Inbound) error {
	switch in.Type {
	case MsgCreateRoom:
		return g.createRoom(c, in)
	case MsgJoinRoom:
		return g.joinRoom(c, in)
	case MsgLeaveRoom:
		entry, ok := g.sessions.Unbind(c.ID)
		if !ok {
			return room.ErrUnknownSession
		}
		g.leaveRoom(c.ID, entry.RoomCode, true)
		return nil
	case MsgPlayerReady:
		r, err := g.roomOf(c.ID)
		if err != nil {
			return err
		}
		return r.MarkReady(c.ID)
	case MsgGameAction:
		act, err := room.ParseActionType(in.Action)
		if err != nil {
			return err
		}
		r, err := g.roomOf(c.ID)
		if err != nil {
			return err
		}
		return r.HandleAction(c.ID, room.Action{Type: act, Row: in.Row, Col: in.Col, Clicks: in.Clicks})
	case MsgGameFinished:
		r, err := g.roomOf(c.ID)
		if err != nil {
			return err
		}
		return r.Finish(c.ID, in.Score, in.Time)
	}
	return fmt.Errorf("unknown message type %q", in.Type)
}

func (g *Gateway) createRoom(c *Client, in Inbound) error {
	name, err := room.NormalizeUsername(in.Username)
	if err != nil {
		return err
	}
	opts := room.Options{Difficulty: in.Difficulty, Mode: in.GameMode}
	if in.MaxPlayers != nil {
		if *in.MaxPlayers == 0 {
			return &room.ValidationError{Field: "max_players", Reason: fmt.Sprintf("must be between %d and %d", room.MinPlayers, room.MaxPlayersLimit)}
		}
		opts.MaxPlayers = *in.MaxPlayers
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	// A connection belongs to at most one room. The previous one is only left once the
	// new room exists, so a failed create keeps the current membership.
	prev, hadRoom := g.sessions.Lookup(c.ID)
	r, err := g.rooms.Create(c.ID, name, opts)
	if err != nil {
		return err
	}
	g.sessions.Bind(c.ID, session.Entry{Username: name, RoomCode: r.Code, UserID: c.UserID})
	if hadRoom {
		g.leaveRoom(c.ID, prev.RoomCode, false)
	}
	return nil
}

func (g *Gateway) joinRoom(c *Client, in Inbound) error {
	code, err := room.ValidateCode(in.RoomCode)
	if err != nil {
		return err
	}
	name, err := room.NormalizeUsername(in.Username)
	if err != nil {
		return err
	}
	prev, hadRoom := g.sessions.Lookup(c.ID)
	if hadRoom && prev.RoomCode == code {
		return &room.ValidationError{Field: "room_code", Reason: "already in this room"}
	}

	r, err := g.rooms.Get(code)
	if err != nil {
		return err
	}
	// Join first so a rejected join leaves the current membership untouched.
	if err := r.Join(c.ID, name); err != nil {
		return err
	}
	g.sessions.Bind(c.ID, session.Entry{Username: name, RoomCode: code, UserID: c.UserID})
	if hadRoom {
		g.leaveRoom(c.ID, prev.RoomCode, false)
	}
	return nil
}

// leaveRoom removes the connection from the room and destroys the room if that emptied it.
func (g *Gateway) leaveRoom(connID uuid.UUID, code string, explicit bool) {
	r, err := g.rooms.Get(code)
	if err != nil {
		return
	}
	if _, err := r.Leave(connID, explicit); err != nil {
		g.log.Debugf("Gateway: leave of %s from %s: %v", connID, code, err)
		return
	}
	g.rooms.RemoveIfEmpty(code)
}

func (g *Gateway) roomOf(connID uuid.UUID) (*room.Room, error) {
	entry, ok := g.sessions.Lookup(connID)
	if !ok {
		return nil, room.ErrUnknownSession
	}
	r, err := g.rooms.Get(entry.RoomCode)
	if err != nil {
		// The binding outlived its room.
		return nil, room.ErrUnknownSession
	}
	return r, nil
}

func (g *Gateway) client(connID uuid.UUID) *Client {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.clients[connID]
}

// deliver is the registry's SendFn. It runs under a room lock and never blocks.
func (g *Gateway) deliver(playerID uuid.UUID, ev room.Event) {
	c := g.client(playerID)
	if c == nil {
		return
	}
	if !c.Write(ev) {
		g.log.Warnf("Gateway: dropped %s for %s", ev.Type, playerID)
	}
}

// recordMatch is the registry's OnMatchEnd. It runs under a room lock, so publishing
// happens on its own goroutine.
func (g *Gateway) recordMatch(s room.MatchSummary) {
	if g.recorder == nil {
		return
	}
	records := make([]models.GameRecord, 0, len(s.Results))
	for i, p := range s.Results {
		won := p.ID == s.WinnerID
		if s.WinnerID == uuid.Nil {
			won = i == 0 && !p.Eliminated
		}
		rec := models.GameRecord{
			ID:          uuid.New(),
			Username:    p.Username,
			GameMode:    string(s.GameMode),
			Difficulty:  s.Difficulty,
			Score:       p.Score,
			TimeSeconds: p.Time,
			Won:         won,
			RoomCode:    s.RoomCode,
			Multiplayer: true,
			CreatedAt:   s.EndedAt,
		}
		if entry, ok := g.sessions.Lookup(p.ID); ok && entry.UserID != uuid.Nil {
			uid := entry.UserID
			rec.UserID = &uid
		}
		records = append(records, rec)
	}

	g.pending.Add(1)
	go func() {
		defer g.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), g.recordTimeout)
		defer cancel()
		if err := g.recorder.Publish(ctx, records...); err != nil {
			g.log.Errorf("Gateway: failed to publish results of room %s: %v", s.RoomCode, err)
		}
	}()
}

// Wait blocks until every in-flight match record has been published.
func (g *Gateway) Wait() {
	g.pending.Wait()
}

// Connections returns the number of open connections.
func (g *Gateway) Connections() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}
