package response

import (
	"time"

	"github.com/duelhq/duelsync/internal/model"
)

// Player represents one player's side of a match in API responses
type Player struct {
	ID                string     `json:"id"`
	DisplayName       string     `json:"display_name"`
	Morale            int        `json:"morale"`
	Energy            int        `json:"energy"`
	MaxEnergyThisTurn int        `json:"max_energy_this_turn"`
	IsHost            bool       `json:"is_host"`
	DeckLabel         string     `json:"deck_label,omitempty"`
	Disconnected      bool       `json:"disconnected"`
	LastDisconnectAt  *time.Time `json:"last_disconnect_at,omitempty"`
	LastReconnectAt   *time.Time `json:"last_reconnect_at,omitempty"`
}

// PlayerFromModel converts a model.PlayerState to a response Player
func PlayerFromModel(p *model.PlayerState) Player {
	return Player{
		ID:                string(p.ID),
		DisplayName:       p.DisplayName,
		Morale:            p.Morale,
		Energy:            p.Energy,
		MaxEnergyThisTurn: p.MaxEnergyThisTurn,
		IsHost:            p.IsHost,
		DeckLabel:         p.DeckLabel,
		Disconnected:      p.Disconnected,
		LastDisconnectAt:  p.LastDisconnectAt,
		LastReconnectAt:   p.LastReconnectAt,
	}
}

// RoundResult represents a finished round
type RoundResult struct {
	RoundNumber int            `json:"round_number"`
	EndTurn     int            `json:"end_turn"`
	FinalMorale map[string]int `json:"final_morale"`
	Winner      *string        `json:"winner"`
	EndReason   string         `json:"end_reason"`
}

// RoundResultFromModel converts model.RoundResult
func RoundResultFromModel(r model.RoundResult) RoundResult {
	morale := make(map[string]int, len(r.FinalMorale))
	for pid, m := range r.FinalMorale {
		morale[string(pid)] = m
	}
	var winner *string
	if r.WinnerID != "" {
		w := string(r.WinnerID)
		winner = &w
	}
	return RoundResult{
		RoundNumber: r.RoundNumber,
		EndTurn:     r.EndTurn,
		FinalMorale: morale,
		Winner:      winner,
		EndReason:   string(r.EndReason),
	}
}

// GameState represents a match in API responses
type GameState struct {
	Code           string        `json:"code"`
	Status         string        `json:"status"`
	Players        []Player      `json:"players"`
	CurrentTurn    int           `json:"current_turn"`
	CurrentRound   int           `json:"current_round"`
	PriorityPlayer string        `json:"priority_player"`
	Rounds         []RoundResult `json:"rounds"`
	Winner         *string       `json:"winner,omitempty"`
	Incomplete     bool          `json:"incomplete,omitempty"`
	StartedAt      time.Time     `json:"started_at"`
	EndedAt        *time.Time    `json:"ended_at,omitempty"`
	Version        int64         `json:"version"`
}

// GameStateFromModel converts model.GameState
func GameStateFromModel(g *model.GameState) GameState {
	players := make([]Player, len(g.Players))
	for i := range g.Players {
		players[i] = PlayerFromModel(&g.Players[i])
	}
	rounds := make([]RoundResult, len(g.Rounds))
	for i, r := range g.Rounds {
		rounds[i] = RoundResultFromModel(r)
	}
	var winner *string
	if g.WinnerID != "" {
		w := string(g.WinnerID)
		winner = &w
	}
	return GameState{
		Code:           string(g.Code),
		Status:         string(g.Status),
		Players:        players,
		CurrentTurn:    g.CurrentTurn,
		CurrentRound:   g.CurrentRound,
		PriorityPlayer: string(g.PriorityPlayerID),
		Rounds:         rounds,
		Winner:         winner,
		Incomplete:     g.Incomplete,
		StartedAt:      g.StartedAt,
		EndedAt:        g.EndedAt,
		Version:        g.Version,
	}
}

// CreateGameResponse is returned from game creation and join: the caller
// needs its minted player id alongside the game state
type CreateGameResponse struct {
	PlayerID string    `json:"player_id"`
	Game     GameState `json:"game"`
}

// MatchPlayer is the per-player display snapshot in match history
type MatchPlayer struct {
	Name      string `json:"name"`
	DeckLabel string `json:"deck_label,omitempty"`
}

// MatchRecord represents a concluded match in API responses
type MatchRecord struct {
	ID        string                 `json:"id"`
	GameCode  string                 `json:"game_code"`
	Players   map[string]MatchPlayer `json:"players"`
	Rounds    []RoundResult          `json:"rounds"`
	Winner    string                 `json:"winner"`
	WinType   string                 `json:"win_type"`
	StartedAt time.Time              `json:"started_at"`
	EndedAt   time.Time              `json:"ended_at"`
}

// MatchRecordFromModel converts model.MatchRecord
func MatchRecordFromModel(m *model.MatchRecord) MatchRecord {
	players := make(map[string]MatchPlayer, len(m.Players))
	for pid, p := range m.Players {
		players[string(pid)] = MatchPlayer{Name: p.Name, DeckLabel: p.DeckLabel}
	}
	rounds := make([]RoundResult, len(m.Rounds))
	for i, r := range m.Rounds {
		rounds[i] = RoundResultFromModel(r)
	}
	return MatchRecord{
		ID:        string(m.ID),
		GameCode:  string(m.GameCode),
		Players:   players,
		Rounds:    rounds,
		Winner:    string(m.WinnerID),
		WinType:   string(m.WinType),
		StartedAt: m.StartedAt,
		EndedAt:   m.EndedAt,
	}
}

// MatchList wraps the match history listing
type MatchList struct {
	Matches []MatchRecord `json:"matches"`
}
