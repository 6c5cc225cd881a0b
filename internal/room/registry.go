// internal/room/registry.go
package room

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultCodeAttempts bounds how many codes Create draws before giving up.
const DefaultCodeAttempts = 64

// Registry owns the code -> Room mapping. It is the only place rooms are created or
// destroyed. Lock order is registry first, then room; rooms never call back into the
// registry.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	// SendFn and OnMatchEnd are copied onto every room created afterwards.
	SendFn     func(playerID uuid.UUID, ev Event)
	OnMatchEnd func(summary MatchSummary)

	logger       *logrus.Logger
	codeFn       func() (string, error)
	seedFn       func() int64
	codeAttempts int
}

// NewRegistry initializes an empty registry.
func NewRegistry(logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Registry{
		rooms:        make(map[string]*Room),
		logger:       logger,
		codeFn:       GenerateCode,
		seedFn:       randomSeed,
		codeAttempts: DefaultCodeAttempts,
	}
}

// Create validates opts, registers a new room under a fresh code and seats the creator.
// The creator receives room_created.
func (reg *Registry) Create(creatorID uuid.UUID, creatorName string, opts Options) (*Room, error) {
	s, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	name, err := NormalizeUsername(creatorName)
	if err != nil {
		return nil, err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, err := reg.freeCodeUnsafe()
	if err != nil {
		return nil, err
	}

	r := newRoom(code, creatorID, name, s, reg.seedFn, reg.logger)
	r.SendFn = reg.SendFn
	r.OnMatchEnd = reg.OnMatchEnd
	reg.rooms[code] = r
	reg.logger.Infof("Registry: created room %s (%s, %s, max %d) for %s", code, s.difficulty.Name, s.mode, s.maxPlayers, name)

	// Not yet reachable by anyone else, but the lock keeps the send ordered before any join.
	r.mu.Lock()
	r.sendUnsafe(creatorID, Event{
		Type:       EventRoomCreated,
		RoomCode:   code,
		Host:       name,
		Difficulty: s.difficulty.Name,
		GameMode:   s.mode,
		MaxPlayers: s.maxPlayers,
		Players:    r.viewsUnsafe(),
	})
	r.mu.Unlock()
	return r, nil
}

func (reg *Registry) freeCodeUnsafe() (string, error) {
	for i := 0; i < reg.codeAttempts; i++ {
		code, err := reg.codeFn()
		if err != nil {
			return "", err
		}
		if _, taken := reg.rooms[code]; !taken {
			return code, nil
		}
	}
	reg.logger.Warnf("Registry: no free code after %d attempts with %d live rooms", reg.codeAttempts, len(reg.rooms))
	return "", ErrCodeSpaceExhausted
}

// Get returns the live room registered under code.
func (reg *Registry) Get(code string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// RemoveIfEmpty destroys the room when its roster is empty. Emptiness is checked under the
// room lock, so a join that landed after the last leave keeps the room alive.
func (reg *Registry) RemoveIfEmpty(code string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[code]
	if !ok {
		return false
	}
	if !r.closeIfEmpty() {
		return false
	}
	delete(reg.rooms, code)
	reg.logger.Infof("Registry: removed empty room %s", code)
	return true
}

// ListWaiting returns summaries of every room still in the lobby, oldest first. Full rooms
// are listed too; PlayerCount and MaxPlayers tell clients whether a seat is free.
func (reg *Registry) ListWaiting() []Summary {
	reg.mu.Lock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	reg.mu.Unlock()

	out := make([]Summary, 0, len(rooms))
	for _, r := range rooms {
		s := r.Summary()
		if s.Status == StatusWaiting {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Code < out[j].Code
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Close drops every room and returns how many were open. Rooms handed out earlier reject
// further joins.
func (reg *Registry) Close() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	n := len(reg.rooms)
	for code, r := range reg.rooms {
		r.close()
		delete(reg.rooms, code)
	}
	if n > 0 {
		reg.logger.Infof("Registry: closed %d rooms", n)
	}
	return n
}

// SetCodeSource replaces the generator used to draw room codes.
func (reg *Registry) SetCodeSource(fn func() (string, error)) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.codeFn = fn
}

// Len returns the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}
