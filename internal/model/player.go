package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// PlayerState is one player's side of a match. It is owned by the GameState
// document and mutated only through session operations.
type PlayerState struct {
	ID                PlayerID
	DisplayName       string
	Morale            int
	Energy            int
	MaxEnergyThisTurn int
	IsHost            bool
	DeckLabel         string
	Disconnected      bool
	LastDisconnectAt  *time.Time
	LastReconnectAt   *time.Time
}

// Clone returns a deep copy of the player state
func (p *PlayerState) Clone() PlayerState {
	out := *p
	if p.LastDisconnectAt != nil {
		t := *p.LastDisconnectAt
		out.LastDisconnectAt = &t
	}
	if p.LastReconnectAt != nil {
		t := *p.LastReconnectAt
		out.LastReconnectAt = &t
	}
	return out
}
