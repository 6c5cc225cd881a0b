// internal/room/room.go
package room

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sweeper/internal/board"
	"github.com/sirupsen/logrus"
)

// Status is the lifecycle state of a room.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished" // only observable while a match is being resolved
)

// Mode selects the match variant.
type Mode string

const (
	ModeStandard Mode = "standard" // every member races on their own copy of the board
	ModeLuck     Mode = "luck"     // members take turns revealing cells
)

const (
	MinPlayers        = 2
	MaxPlayersLimit   = 10
	DefaultMaxPlayers = 3
)

// ParseMode resolves a mode label. An empty label means standard.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStandard:
		return ModeStandard, nil
	case ModeLuck:
		return ModeLuck, nil
	}
	return "", invalid("game_mode", "must be %q or %q", ModeStandard, ModeLuck)
}

// Options are the caller-supplied settings of a new room.
type Options struct {
	Difficulty string
	MaxPlayers int // 0 selects DefaultMaxPlayers
	Mode       string
}

type settings struct {
	difficulty board.Difficulty
	mode       Mode
	maxPlayers int
}

// Validate reports whether the options would be accepted by Registry.Create.
func (o Options) Validate() error {
	_, err := o.resolve()
	return err
}

func (o Options) resolve() (settings, error) {
	d, err := board.LookupDifficulty(o.Difficulty)
	if err != nil {
		return settings{}, invalid("difficulty", "%v", err)
	}
	mode, err := ParseMode(o.Mode)
	if err != nil {
		return settings{}, err
	}
	maxPlayers := o.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = DefaultMaxPlayers
	}
	if maxPlayers < MinPlayers || maxPlayers > MaxPlayersLimit {
		return settings{}, invalid("max_players", "must be between %d and %d", MinPlayers, MaxPlayersLimit)
	}
	return settings{difficulty: d, mode: mode, maxPlayers: maxPlayers}, nil
}

// Room holds the authoritative state of one match. Every exported method takes the room
// lock for its full duration, so operations on a room are applied one at a time and the
// events they emit are delivered in the same order to every member.
type Room struct {
	Code       string
	HostID     uuid.UUID
	HostName   string
	Difficulty board.Difficulty
	Mode       Mode
	MaxPlayers int
	CreatedAt  time.Time

	Status      Status
	BoardSeed   int64
	Players     []*Player // join order; turn rotation walks this slice
	CurrentTurn uuid.UUID // luck mode only, uuid.Nil otherwise

	// SendFn delivers an event to one connection. It is called with the room lock held and
	// must not block or call back into the room.
	SendFn func(playerID uuid.UUID, ev Event)
	// OnMatchEnd is invoked with the lock held each time a match resolves.
	OnMatchEnd func(summary MatchSummary)

	seedFn func() int64
	closed bool
	log    *logrus.Entry
	mu     sync.Mutex
}

func newRoom(code string, creatorID uuid.UUID, creatorName string, s settings, seedFn func() int64, logger *logrus.Logger) *Room {
	r := &Room{
		Code:       code,
		HostID:     creatorID,
		HostName:   creatorName,
		Difficulty: s.difficulty,
		Mode:       s.mode,
		MaxPlayers: s.maxPlayers,
		CreatedAt:  time.Now(),
		Status:     StatusWaiting,
		BoardSeed:  seedFn(),
		Players:    []*Player{newPlayer(creatorID, creatorName)},
		seedFn:     seedFn,
		log:        logger.WithField("room", code),
	}
	if r.Mode == ModeLuck {
		r.CurrentTurn = creatorID
	}
	return r
}

// Join appends a member to the roster. Only waiting rooms with free capacity accept joins.
func (r *Room) Join(playerID uuid.UUID, name string) error {
	name, err := NormalizeUsername(name)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if r.Status != StatusWaiting {
		return ErrGameInProgress
	}
	if r.indexOfUnsafe(playerID) >= 0 {
		return invalid("room_code", "already a member of room %s", r.Code)
	}
	if len(r.Players) >= r.MaxPlayers {
		return ErrRoomFull
	}

	p := newPlayer(playerID, name)
	r.Players = append(r.Players, p)
	if r.Mode == ModeLuck && r.indexOfUnsafe(r.CurrentTurn) < 0 {
		r.CurrentTurn = r.initialTurnUnsafe()
	}
	r.log.Infof("%s (%s) joined, %d/%d players", name, playerID, len(r.Players), r.MaxPlayers)

	r.sendUnsafe(playerID, Event{
		Type:       EventRoomJoined,
		RoomCode:   r.Code,
		Host:       r.HostName,
		Difficulty: r.Difficulty.Name,
		GameMode:   r.Mode,
		MaxPlayers: r.MaxPlayers,
		Players:    r.viewsUnsafe(),
	})
	r.broadcastUnsafe(Event{
		Type:     EventPlayerJoined,
		Username: name,
		Players:  r.viewsUnsafe(),
	}, playerID)
	return nil
}

// Leave removes a member and returns how many remain. When explicit is set the departing
// member receives a left_room acknowledgement; disconnects pass false.
//
// A departure during a match may resolve it: when every remaining member has finished, or
// when only one non-eliminated member is left in a match that has already lost someone.
func (r *Room) Leave(playerID uuid.UUID, explicit bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOfUnsafe(playerID)
	if idx < 0 {
		return len(r.Players), ErrUnknownSession
	}
	p := r.Players[idx]
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	remaining := len(r.Players)
	r.log.Infof("%s (%s) left, %d remaining", p.Name, p.ID, remaining)

	if explicit {
		r.sendUnsafe(playerID, Event{Type: EventLeftRoom, RoomCode: r.Code, Success: boolPtr(true)})
	}
	if remaining == 0 {
		r.CurrentTurn = uuid.Nil
		return 0, nil
	}

	r.broadcastUnsafe(Event{
		Type:             EventPlayerLeft,
		Username:         p.Name,
		PlayersRemaining: intPtr(remaining),
		Players:          r.viewsUnsafe(),
	}, uuid.Nil)

	if r.Mode == ModeLuck && r.CurrentTurn == playerID {
		// The slot after the departed one now sits at idx, so scan from idx-1.
		next := r.scanFromUnsafe(idx - 1)
		if next == nil {
			r.CurrentTurn = uuid.Nil
		} else {
			r.CurrentTurn = next.ID
			if r.Status == StatusPlaying {
				r.broadcastTurnUnsafe()
			}
		}
	}

	switch r.Status {
	case StatusPlaying:
		r.resolveAfterDepartureUnsafe()
	case StatusWaiting:
		if r.allReadyUnsafe() {
			r.startUnsafe()
		}
	}
	return remaining, nil
}

// MarkReady flags the member as ready. The match starts once every member is ready and at
// least MinPlayers are present. Readiness cannot be withdrawn.
func (r *Room) MarkReady(playerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerUnsafe(playerID)
	if p == nil {
		return ErrUnknownSession
	}
	if r.Status != StatusWaiting {
		return ErrGameInProgress
	}

	p.Ready = true
	allReady := r.allReadyUnsafe()
	r.broadcastUnsafe(Event{
		Type:     EventPlayerReady,
		Username: p.Name,
		Players:  r.viewsUnsafe(),
		AllReady: boolPtr(allReady),
	}, uuid.Nil)

	if allReady {
		r.startUnsafe()
	}
	return nil
}

// Summary is the public listing entry for a room.
type Summary struct {
	Code        string    `json:"code"`
	Host        string    `json:"host"`
	Difficulty  string    `json:"difficulty"`
	GameMode    Mode      `json:"game_mode"`
	Status      Status    `json:"status"`
	PlayerCount int       `json:"players"`
	MaxPlayers  int       `json:"max_players"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *Room) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Summary{
		Code:        r.Code,
		Host:        r.HostName,
		Difficulty:  r.Difficulty.Name,
		GameMode:    r.Mode,
		Status:      r.Status,
		PlayerCount: len(r.Players),
		MaxPlayers:  r.MaxPlayers,
		CreatedAt:   r.CreatedAt,
	}
}

// State is a point-in-time copy of the mutable parts of a room.
type State struct {
	Status      Status
	BoardSeed   int64
	Players     []PlayerView
	CurrentTurn uuid.UUID
}

func (r *Room) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{
		Status:      r.Status,
		BoardSeed:   r.BoardSeed,
		Players:     r.viewsUnsafe(),
		CurrentTurn: r.CurrentTurn,
	}
}

// closeIfEmpty marks an empty room as closed so late joins fail with ErrRoomNotFound.
// Returns true when the room was closed.
func (r *Room) closeIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Players) > 0 {
		return false
	}
	r.closed = true
	return true
}

func (r *Room) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

// startUnsafe moves the room to playing. Assumes the lock is held.
func (r *Room) startUnsafe() {
	r.Status = StatusPlaying
	for _, p := range r.Players {
		p.Score, p.Time = 0, 0
		p.Finished, p.Eliminated = false, false
	}

	ev := Event{
		Type:       EventGameStart,
		RoomCode:   r.Code,
		Difficulty: r.Difficulty.Name,
		GameMode:   r.Mode,
		BoardSeed:  int64Ptr(r.BoardSeed),
		Players:    r.viewsUnsafe(),
	}
	if r.Mode == ModeLuck {
		r.CurrentTurn = r.initialTurnUnsafe()
		if cur := r.playerUnsafe(r.CurrentTurn); cur != nil {
			ev.CurrentTurn = cur.Name
			ev.CurrentTurnID = uuidPtr(cur.ID)
		}
	}
	r.log.Infof("match started with %d players, seed %d", len(r.Players), r.BoardSeed)
	r.broadcastUnsafe(ev, uuid.Nil)
}

func (r *Room) sendUnsafe(playerID uuid.UUID, ev Event) {
	if r.SendFn == nil {
		return
	}
	r.SendFn(playerID, ev)
}

// broadcastUnsafe sends ev to every member except skip. Pass uuid.Nil to reach everyone.
func (r *Room) broadcastUnsafe(ev Event, skip uuid.UUID) {
	if r.SendFn == nil {
		return
	}
	for _, p := range r.Players {
		if p.ID == skip {
			continue
		}
		r.SendFn(p.ID, ev)
	}
}

func (r *Room) indexOfUnsafe(playerID uuid.UUID) int {
	if playerID == uuid.Nil {
		return -1
	}
	for i, p := range r.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (r *Room) playerUnsafe(playerID uuid.UUID) *Player {
	if i := r.indexOfUnsafe(playerID); i >= 0 {
		return r.Players[i]
	}
	return nil
}

func (r *Room) allReadyUnsafe() bool {
	if len(r.Players) < MinPlayers {
		return false
	}
	for _, p := range r.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

func (r *Room) viewsUnsafe() []PlayerView {
	views := make([]PlayerView, len(r.Players))
	for i, p := range r.Players {
		views[i] = p.view()
	}
	return views
}
