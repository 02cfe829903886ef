package service

import "errors"

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrMatchNotFound          = errors.New("match not found")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrEntryNameTooLong       = errors.New("entry name exceeds 50 characters")
	ErrDuplicateEntry         = errors.New("entry names must be unique")
	ErrWinnerRequired         = errors.New("winner is required")
	ErrAmbiguousWinner        = errors.New("winner matches both participants")
	ErrNegativeScore          = errors.New("scores cannot be negative")
)
