package services

import "errors"

// Shared sentinel errors, mapped to HTTP statuses in the handlers layer.
var (
	// Validation and business-rule errors
	ErrPlayerNameRequired  = errors.New("every player needs a name")
	ErrPlayerCountInvalid  = errors.New("player count must be between 2 and 10")
	ErrUnknownScheduleMode = errors.New("unknown schedule mode")
	ErrScoreNegative       = errors.New("scores must not be negative")

	// Conflicts
	ErrTournamentActive = errors.New("a tournament is already in progress")

	// Not found
	ErrTournamentNotStarted = errors.New("no tournament in progress")

	// Authentication
	ErrAuthInvalidCredentials = errors.New("invalid organizer password")
)
