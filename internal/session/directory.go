// internal/session/directory.go
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Entry records which room a connection currently belongs to.
type Entry struct {
	Username string
	RoomCode string
	UserID   uuid.UUID // registered account behind the connection, uuid.Nil for guests
	BoundAt  time.Time
}

// Directory maps connection identities to their room. It is routing state only: the
// rooms themselves hold the authoritative roster.
type Directory struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Entry
	log     *logrus.Entry
}

func NewDirectory(logger *logrus.Logger) *Directory {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Directory{
		entries: make(map[uuid.UUID]Entry),
		log:     logger.WithField("module", "session.directory"),
	}
}

// Bind associates the connection with a room, replacing any previous binding.
func (d *Directory) Bind(connID uuid.UUID, e Entry) {
	if e.BoundAt.IsZero() {
		e.BoundAt = time.Now()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[connID] = e
	d.log.WithFields(logrus.Fields{"conn": connID, "room": e.RoomCode}).Debug("bound session")
}

// Unbind drops the connection's binding and returns what it was bound to.
func (d *Directory) Unbind(connID uuid.UUID) (Entry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.entries[connID]
	if ok {
		delete(d.entries, connID)
		d.log.WithFields(logrus.Fields{"conn": connID, "room": e.RoomCode}).Debug("unbound session")
	}
	return e, ok
}

// Lookup returns the connection's binding.
func (d *Directory) Lookup(connID uuid.UUID) (Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.entries[connID]
	return e, ok
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}
