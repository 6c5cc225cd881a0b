package room

import "github.com/google/uuid"

// Turn rotation always walks r.Players in join order. The current position is looked up
// again on every advance rather than cached, so departures never leave a stale index.

// initialTurnUnsafe returns who opens a luck match: the creator while present, otherwise
// the longest-standing member.
func (r *Room) initialTurnUnsafe() uuid.UUID {
	if r.indexOfUnsafe(r.HostID) >= 0 {
		return r.HostID
	}
	if len(r.Players) == 0 {
		return uuid.Nil
	}
	return r.Players[0].ID
}

// scanFromUnsafe walks forward from position from (exclusive), wrapping at the end of the
// roster, and returns the first member still able to act. Position from is visited last.
// from may be -1 to start at the head of the roster.
func (r *Room) scanFromUnsafe(from int) *Player {
	n := len(r.Players)
	for step := 1; step <= n; step++ {
		p := r.Players[((from+step)%n+n)%n]
		if !p.Eliminated && !p.Finished {
			return p
		}
	}
	return nil
}

// advanceTurnUnsafe passes the turn to the next member able to act. It returns false and
// leaves the turn where it is when nobody else can take it.
func (r *Room) advanceTurnUnsafe() bool {
	next := r.scanFromUnsafe(r.indexOfUnsafe(r.CurrentTurn))
	if next == nil || next.ID == r.CurrentTurn {
		return false
	}
	r.CurrentTurn = next.ID
	return true
}

func (r *Room) broadcastTurnUnsafe() {
	ev := Event{Type: EventTurnChanged}
	if cur := r.playerUnsafe(r.CurrentTurn); cur != nil {
		ev.CurrentTurn = cur.Name
		ev.CurrentTurnID = uuidPtr(cur.ID)
	}
	r.broadcastUnsafe(ev, uuid.Nil)
}
