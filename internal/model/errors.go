package model

import "errors"

// Common errors used across the application
var (
	// Game errors
	ErrGameNotFound           = errors.New("game not found")
	ErrGameFull               = errors.New("game already has two players")
	ErrPlayerNotInGame        = errors.New("player is not in this game")
	ErrInvalidStateTransition = errors.New("action not allowed in current game status")
	ErrUnknownCounter         = errors.New("unknown counter kind")

	// Document errors
	ErrCorruptGameState = errors.New("corrupt game state document")
	ErrVersionConflict  = errors.New("game document changed since last read")

	// Match history errors
	ErrMatchNotFound = errors.New("match record not found")

	// Store infrastructure errors; transient, surfaced to the caller
	// without retry
	ErrStoreRead  = errors.New("store read failed")
	ErrStoreWrite = errors.New("store write failed")
)
