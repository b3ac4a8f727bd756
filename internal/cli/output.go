package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case CreateResult:
		o.printCreateResult(v)
	case GameState:
		o.printGameState(v)
	case MatchRecord:
		o.printMatchRecord(v)
	case MatchList:
		o.printMatchList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID                string `json:"id"`
	DisplayName       string `json:"display_name"`
	Morale            int    `json:"morale"`
	Energy            int    `json:"energy"`
	MaxEnergyThisTurn int    `json:"max_energy_this_turn"`
	IsHost            bool   `json:"is_host"`
	DeckLabel         string `json:"deck_label,omitempty"`
	Disconnected      bool   `json:"disconnected"`
}

// RoundResult response type
type RoundResult struct {
	RoundNumber int            `json:"round_number"`
	EndTurn     int            `json:"end_turn"`
	FinalMorale map[string]int `json:"final_morale"`
	Winner      *string        `json:"winner"`
	EndReason   string         `json:"end_reason"`
}

// GameState response type
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
}

// CreateResult combines the minted player id and the game state
type CreateResult struct {
	PlayerID string    `json:"player_id"`
	Game     GameState `json:"game"`
}

// MatchPlayer response type
type MatchPlayer struct {
	Name      string `json:"name"`
	DeckLabel string `json:"deck_label,omitempty"`
}

// MatchRecord response type
type MatchRecord struct {
	ID       string                 `json:"id"`
	GameCode string                 `json:"game_code"`
	Players  map[string]MatchPlayer `json:"players"`
	Rounds   []RoundResult          `json:"rounds"`
	Winner   string                 `json:"winner"`
	WinType  string                 `json:"win_type"`
}

// MatchList response type
type MatchList struct {
	Matches []MatchRecord `json:"matches"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printCreateResult(r CreateResult) {
	fmt.Printf("Game code: %s\n", r.Game.Code)
	fmt.Printf("Your player id: %s\n", r.PlayerID)
	o.printGameState(r.Game)
}

func (o *Output) printGameState(g GameState) {
	fmt.Printf("Game %s  [%s]  round %d, turn %d\n", g.Code, g.Status, g.CurrentRound, g.CurrentTurn)
	for _, p := range g.Players {
		marks := []string{}
		if p.IsHost {
			marks = append(marks, "host")
		}
		if p.ID == g.PriorityPlayer {
			marks = append(marks, "priority")
		}
		if p.Disconnected {
			marks = append(marks, "disconnected")
		}
		suffix := ""
		if len(marks) > 0 {
			suffix = " (" + strings.Join(marks, ", ") + ")"
		}
		fmt.Printf("  %-12s morale=%-4d energy=%d/%d%s\n",
			p.DisplayName, p.Morale, p.Energy, p.MaxEnergyThisTurn, suffix)
	}
	for _, r := range g.Rounds {
		winner := "-"
		if r.Winner != nil {
			winner = playerName(g, *r.Winner)
		}
		fmt.Printf("  round %d: winner %s (%s, turn %d)\n", r.RoundNumber, winner, r.EndReason, r.EndTurn)
	}
	if g.Winner != nil {
		fmt.Printf("  match winner: %s\n", playerName(g, *g.Winner))
	}
}

func (o *Output) printMatchRecord(m MatchRecord) {
	winner := m.Winner
	if p, ok := m.Players[m.Winner]; ok {
		winner = p.Name
	}
	fmt.Printf("%s  game=%s  winner=%s  (%s)\n", m.ID, m.GameCode, winner, m.WinType)
	for _, r := range m.Rounds {
		fmt.Printf("  round %d ended turn %d: %s\n", r.RoundNumber, r.EndTurn, r.EndReason)
	}
}

func (o *Output) printMatchList(l MatchList) {
	if len(l.Matches) == 0 {
		fmt.Println("No matches recorded")
		return
	}
	for _, m := range l.Matches {
		o.printMatchRecord(m)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Server status: %s\n", h.Status)
}

func playerName(g GameState, id string) string {
	for _, p := range g.Players {
		if p.ID == id {
			return p.DisplayName
		}
	}
	return id
}
