package model

import "time"

// MatchID uniquely identifies a persisted match record
type MatchID string

// WinType categorizes how a match concluded
type WinType string

const (
	WinTypeNormal     WinType = "normal"
	WinTypeSurrender  WinType = "surrender"
	WinTypeIncomplete WinType = "incomplete"
)

// MatchPlayer is the per-player display snapshot stored in match history
type MatchPlayer struct {
	Name      string
	DeckLabel string
}

// MatchRecord is the persisted summary of a concluded match. Created once
// when a match (not a round) ends and never mutated afterward; read later
// by statistics views.
type MatchRecord struct {
	ID        MatchID
	GameCode  GameCode
	Players   map[PlayerID]MatchPlayer
	Rounds    []RoundResult
	WinnerID  PlayerID
	WinType   WinType
	StartedAt time.Time
	EndedAt   time.Time
}
