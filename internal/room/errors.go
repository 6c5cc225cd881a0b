// internal/room/errors.go
package room

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched (via errors.Is) by every *ValidationError.
	ErrValidation = errors.New("validation error")

	ErrRoomNotFound   = errors.New("room not found")
	ErrGameInProgress = errors.New("game already in progress")
	ErrRoomFull       = errors.New("room is full")
	ErrNotPlaying     = errors.New("game has not started")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrPlayerOut      = errors.New("player already eliminated or finished")

	// ErrUnknownSession marks events from a connection that is not a room member.
	// Callers drop these silently; disconnect and duplicate-leave races produce them.
	ErrUnknownSession = errors.New("unknown session")

	// ErrCodeSpaceExhausted is returned when no free room code could be found.
	ErrCodeSpaceExhausted = errors.New("no free room code available")
)

// ValidationError describes malformed input. No state is mutated when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
