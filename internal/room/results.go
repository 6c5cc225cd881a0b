package room

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// RankPlayers orders results for display: members still standing before eliminated ones,
// then by score, highest first. Equal entries keep join order.
func RankPlayers(players []PlayerView) []PlayerView {
	ranked := make([]PlayerView, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Eliminated != ranked[j].Eliminated {
			return !ranked[i].Eliminated
		}
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// endMatchUnsafe publishes the ranked results, reports the match and returns the room to
// waiting. winnerID is uuid.Nil when the match ended without a single survivor.
func (r *Room) endMatchUnsafe(winnerID uuid.UUID) {
	r.Status = StatusFinished
	results := RankPlayers(r.viewsUnsafe())

	ev := Event{
		Type:     EventGameEnded,
		RoomCode: r.Code,
		Results:  results,
	}
	if w := r.playerUnsafe(winnerID); w != nil {
		ev.Winner = w.Name
	}
	r.log.Infof("match ended, winner %q", ev.Winner)
	r.broadcastUnsafe(ev, uuid.Nil)

	if r.OnMatchEnd != nil {
		r.OnMatchEnd(MatchSummary{
			RoomCode:   r.Code,
			GameMode:   r.Mode,
			Difficulty: r.Difficulty.Name,
			WinnerID:   winnerID,
			Results:    results,
			EndedAt:    time.Now(),
		})
	}

	r.resetUnsafe()
}

// resetUnsafe prepares the room for a rematch with the same roster and a fresh seed.
func (r *Room) resetUnsafe() {
	r.Status = StatusWaiting
	r.BoardSeed = r.seedFn()
	for _, p := range r.Players {
		p.resetMatchState()
	}
	if r.Mode == ModeLuck {
		r.CurrentTurn = r.initialTurnUnsafe()
	} else {
		r.CurrentTurn = uuid.Nil
	}
}
