package bracket

import "errors"

var (
	ErrInvalidParticipantCount = errors.New("bracket needs at least 2 participants")
	ErrEmptyParticipantList    = errors.New("participant list is empty")
	ErrMatchNotCompleted       = errors.New("match has no winner")
	ErrTerminalRoundHasNoNext  = errors.New("final match has no next match")

	// ErrStructuralInvariant means the engine produced or was handed a bracket
	// it could never build itself. It is a programming defect, not user input.
	ErrStructuralInvariant = errors.New("bracket structural invariant violated")

	ErrMatchAlreadyCompleted = errors.New("match is already completed")
	ErrMatchNotReady         = errors.New("match does not have both participants")
	ErrWinnerNotInMatch      = errors.New("winner is not part of this match")
	ErrSlotConflict          = errors.New("slot already holds a different participant")
	ErrUnknownFormat         = errors.New("unknown bracket format")
	ErrUnknownSeeding        = errors.New("unknown seeding strategy")
)
