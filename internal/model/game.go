package model

import (
	"fmt"
	"strings"
	"time"
)

// GameCode is the human-shareable identifier for a match document
type GameCode string

// NormalizeCode uppercases a user-entered game code; codes are shared
// verbally and must match case-insensitively
func NormalizeCode(s string) GameCode {
	return GameCode(strings.ToUpper(strings.TrimSpace(s)))
}

// GameStatus represents the current phase of a match
type GameStatus string

const (
	StatusSetup  GameStatus = "setup"  // Host created the game, waiting for a guest
	StatusActive GameStatus = "active" // Both players joined, turns advancing
	StatusEnded  GameStatus = "ended"  // Terminal; read-only for display
)

const (
	// MaxPlayers is the number of players in a match
	MaxPlayers = 2
	// TotalRounds is the number of rounds in a full match
	TotalRounds = 2
	// StartingMorale is each player's morale at round start
	StartingMorale = 50
	// MoraleWinThreshold ends a round when reached or exceeded
	MoraleWinThreshold = 100
)

// WinnerIncomplete is the sentinel winner for matches ended by mutual
// abandonment rather than play
const WinnerIncomplete PlayerID = "incomplete"

// GameState is the shared match document. Both clients mutate it through
// whole-document writes guarded by Version; there is no field-level merge.
type GameState struct {
	Code   GameCode
	Status GameStatus

	// Players in join order; the host is always first
	Players []PlayerState

	CurrentTurn      int // 1-indexed, resets at round boundaries
	CurrentRound     int // 1 or 2
	PriorityPlayerID PlayerID

	Rounds     []RoundResult
	WinnerID   PlayerID // set only when Status is ended; may be WinnerIncomplete
	Incomplete bool

	StartedAt time.Time
	EndedAt   *time.Time
	UpdatedAt time.Time

	// Version is the document revision. Writes succeed only against the
	// revision the writer last read, so concurrent advances conflict
	// instead of silently clobbering each other.
	Version int64
}

// Player returns the player with the given id, or nil
func (g *GameState) Player(id PlayerID) *PlayerState {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}

// Opponent returns the other player, or nil if the game is not full
func (g *GameState) Opponent(id PlayerID) *PlayerState {
	for i := range g.Players {
		if g.Players[i].ID != id {
			return &g.Players[i]
		}
	}
	return nil
}

// Host returns the hosting player, or nil
func (g *GameState) Host() *PlayerState {
	for i := range g.Players {
		if g.Players[i].IsHost {
			return &g.Players[i]
		}
	}
	return nil
}

// IsFull returns true once both seats are taken
func (g *GameState) IsFull() bool {
	return len(g.Players) >= MaxPlayers
}

// AllDisconnected returns true if every player has dropped
func (g *GameState) AllDisconnected() bool {
	if len(g.Players) == 0 {
		return false
	}
	for i := range g.Players {
		if !g.Players[i].Disconnected {
			return false
		}
	}
	return true
}

// Clone returns a deep copy, so a caller can mutate a candidate next state
// without touching the last confirmed one
func (g *GameState) Clone() *GameState {
	out := *g
	out.Players = make([]PlayerState, len(g.Players))
	for i := range g.Players {
		out.Players[i] = g.Players[i].Clone()
	}
	out.Rounds = make([]RoundResult, len(g.Rounds))
	for i := range g.Rounds {
		out.Rounds[i] = g.Rounds[i].Clone()
	}
	if g.EndedAt != nil {
		t := *g.EndedAt
		out.EndedAt = &t
	}
	return &out
}

// Validate fails closed on documents that violate the match invariants,
// rather than guessing defaults for missing fields
func (g *GameState) Validate() error {
	if g.Code == "" {
		return fmt.Errorf("%w: missing game code", ErrCorruptGameState)
	}
	switch g.Status {
	case StatusSetup, StatusActive, StatusEnded:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrCorruptGameState, g.Status)
	}
	if len(g.Players) == 0 || len(g.Players) > MaxPlayers {
		return fmt.Errorf("%w: %d players", ErrCorruptGameState, len(g.Players))
	}
	hosts := 0
	for i := range g.Players {
		if g.Players[i].ID == "" {
			return fmt.Errorf("%w: player without id", ErrCorruptGameState)
		}
		if g.Players[i].IsHost {
			hosts++
		}
	}
	if hosts != 1 {
		return fmt.Errorf("%w: %d hosts", ErrCorruptGameState, hosts)
	}
	// Priority is only assigned once the guest joins
	if g.Status != StatusSetup && g.Player(g.PriorityPlayerID) == nil {
		return fmt.Errorf("%w: priority player %q not in game", ErrCorruptGameState, g.PriorityPlayerID)
	}
	if g.CurrentTurn < 1 {
		return fmt.Errorf("%w: turn %d", ErrCorruptGameState, g.CurrentTurn)
	}
	if g.CurrentRound < 1 || g.CurrentRound > TotalRounds {
		return fmt.Errorf("%w: round %d", ErrCorruptGameState, g.CurrentRound)
	}
	if len(g.Rounds) > TotalRounds {
		return fmt.Errorf("%w: %d round results", ErrCorruptGameState, len(g.Rounds))
	}
	if g.Status == StatusEnded && g.WinnerID == "" {
		return fmt.Errorf("%w: ended without winner", ErrCorruptGameState)
	}
	return nil
}
