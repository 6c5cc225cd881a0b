package room

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// ActionType is the kind of in-match action a member reports.
type ActionType string

const (
	ActionReveal     ActionType = "reveal"
	ActionFlag       ActionType = "flag"
	ActionEliminated ActionType = "eliminated" // the member hit a mine on their board
)

// ParseActionType resolves the wire label of a game action.
func ParseActionType(s string) (ActionType, error) {
	switch t := ActionType(strings.ToLower(strings.TrimSpace(s))); t {
	case ActionReveal, ActionFlag, ActionEliminated:
		return t, nil
	}
	return "", invalid("action", "unknown action %q", s)
}

// Action is a member's in-match move. Row and Col are required for reveal and flag.
// Clicks is the number of tiles the member opened before an elimination.
type Action struct {
	Type   ActionType
	Row    *int
	Col    *int
	Clicks int
}

func (r *Room) validateAction(act Action) error {
	switch act.Type {
	case ActionReveal, ActionFlag:
		if act.Row == nil || act.Col == nil {
			return invalid("coordinates", "row and col are required for %s", act.Type)
		}
		if !r.Difficulty.Contains(*act.Row, *act.Col) {
			return invalid("coordinates", "(%d, %d) is outside the %dx%d board",
				*act.Row, *act.Col, r.Difficulty.Rows, r.Difficulty.Cols)
		}
	case ActionEliminated:
		if act.Clicks < 0 {
			return invalid("clicks", "must not be negative")
		}
	default:
		return invalid("action", "unknown action %q", act.Type)
	}
	return nil
}

// HandleAction applies a reveal, flag or elimination reported by a member.
//
// Reveals and flags are relayed to every other member so they can mirror the move. In luck
// mode only the member holding the turn may act, and a reveal passes the turn on. An
// elimination may resolve the match.
func (r *Room) HandleAction(playerID uuid.UUID, act Action) error {
	// Difficulty is fixed at creation, so bounds can be checked before locking.
	if err := r.validateAction(act); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerUnsafe(playerID)
	if p == nil {
		return ErrUnknownSession
	}
	if r.Status != StatusPlaying {
		return ErrNotPlaying
	}
	if p.Eliminated || p.Finished {
		return ErrPlayerOut
	}

	if act.Type == ActionEliminated {
		r.eliminateUnsafe(p, act.Clicks)
		return nil
	}

	if r.Mode == ModeLuck && r.CurrentTurn != playerID {
		return ErrNotYourTurn
	}

	r.broadcastUnsafe(Event{
		Type:     EventPlayerAction,
		Username: p.Name,
		Action:   act.Type,
		Row:      intPtr(*act.Row),
		Col:      intPtr(*act.Col),
	}, playerID)

	if r.Mode == ModeLuck && act.Type == ActionReveal {
		if r.advanceTurnUnsafe() {
			r.broadcastTurnUnsafe()
		}
	}
	return nil
}

// Finish records that a member cleared their board with the given score and elapsed
// seconds. The match resolves once every member has finished.
func (r *Room) Finish(playerID uuid.UUID, score int, seconds float64) error {
	if score < 0 {
		return invalid("score", "must not be negative")
	}
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return invalid("time", "must be a non-negative number of seconds")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.playerUnsafe(playerID)
	if p == nil {
		return ErrUnknownSession
	}
	if r.Status != StatusPlaying {
		return ErrNotPlaying
	}
	if p.Eliminated || p.Finished {
		return ErrPlayerOut
	}

	p.Finished = true
	p.Score = score
	p.Time = seconds
	r.log.Infof("%s finished with score %d in %.2fs", p.Name, score, seconds)

	r.broadcastUnsafe(Event{
		Type:     EventPlayerFinished,
		Username: p.Name,
		Score:    intPtr(score),
		Time:     floatPtr(seconds),
		Players:  r.viewsUnsafe(),
	}, uuid.Nil)

	if r.allFinishedUnsafe() {
		r.endMatchUnsafe(uuid.Nil)
		return nil
	}
	if r.Mode == ModeLuck && r.CurrentTurn == playerID {
		if r.advanceTurnUnsafe() {
			r.broadcastTurnUnsafe()
		}
	}
	return nil
}

// eliminateUnsafe marks p as out and resolves the match if this leaves a single survivor
// or nobody still playing. Assumes the lock is held.
func (r *Room) eliminateUnsafe(p *Player, clicks int) {
	p.Eliminated = true
	p.Finished = true
	p.Score = clicks
	r.log.Infof("%s eliminated after %d clicks", p.Name, clicks)

	ev := Event{
		Type:     EventPlayerEliminated,
		Username: p.Name,
		Score:    intPtr(clicks),
	}

	survivors := r.survivorsUnsafe()
	if len(survivors) == 1 {
		ev.Winner = survivors[0].Name
		r.broadcastUnsafe(ev, uuid.Nil)
		r.endMatchUnsafe(survivors[0].ID)
		return
	}

	r.broadcastUnsafe(ev, uuid.Nil)
	if r.allFinishedUnsafe() {
		r.endMatchUnsafe(uuid.Nil)
		return
	}
	if r.Mode == ModeLuck && r.CurrentTurn == p.ID {
		if r.advanceTurnUnsafe() {
			r.broadcastTurnUnsafe()
		}
	}
}

// resolveAfterDepartureUnsafe ends a running match that a departure left decided.
// Assumes the lock is held and at least one member remains.
func (r *Room) resolveAfterDepartureUnsafe() {
	survivors := r.survivorsUnsafe()
	eliminated := len(r.Players) - len(survivors)

	switch {
	case len(survivors) == 1 && (eliminated > 0 || r.Mode == ModeLuck):
		r.endMatchUnsafe(survivors[0].ID)
	case r.allFinishedUnsafe():
		r.endMatchUnsafe(uuid.Nil)
	}
}

func (r *Room) survivorsUnsafe() []*Player {
	var out []*Player
	for _, p := range r.Players {
		if !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) allFinishedUnsafe() bool {
	for _, p := range r.Players {
		if !p.Finished {
			return false
		}
	}
	return len(r.Players) > 0
}
