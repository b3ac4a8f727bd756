package session

import (
	"time"

	"github.com/duelhq/duelsync/internal/model"
	"github.com/duelhq/duelsync/internal/services/rules"
)

// Pure state transitions shared by the stateless controller and the
// client-side session handle. Each mutates the given state in place and
// leaves persistence to the caller; they never touch storage.

// applyAdjust applies a counter delta to the named player. Morale is
// unclamped in both directions; round-end checks observe the raw value at
// advance time. Energy floors at zero and feeds the turn's high-water mark.
func applyAdjust(g *model.GameState, playerID model.PlayerID, kind model.CounterKind, delta int) error {
	p := g.Player(playerID)
	if p == nil {
		return model.ErrPlayerNotInGame
	}

	switch kind {
	case model.CounterMorale:
		p.Morale += delta
	case model.CounterEnergy:
		p.Energy += delta
		if p.Energy < 0 {
			p.Energy = 0
		}
		p.MaxEnergyThisTurn = max(p.MaxEnergyThisTurn, p.Energy)
	default:
		return model.ErrUnknownCounter
	}
	return nil
}

// applyAdvance resolves the turn boundary: it checks the round-end
// conditions and either advances the turn, rolls the match into round two,
// or finalizes the match. Returns true when the match ended.
func applyAdvance(g *model.GameState, now time.Time) bool {
	result, ended := rules.EvaluateRound(g)
	if !ended {
		// Available energy carries over at its peak for the turn, not its
		// spent value; the high-water mark keeps growing within the round
		for i := range g.Players {
			g.Players[i].Energy = g.Players[i].MaxEnergyThisTurn
		}
		g.CurrentTurn++
		flipPriority(g)
		return false
	}

	g.Rounds = append(g.Rounds, result)

	if g.CurrentRound < model.TotalRounds {
		for i := range g.Players {
			g.Players[i].Morale = model.StartingMorale
			g.Players[i].Energy = 0
			g.Players[i].MaxEnergyThisTurn = 0
		}
		g.CurrentRound++
		g.CurrentTurn = 1
		flipPriority(g)
		return false
	}

	endMatch(g, rules.FinalizeMatch(g.Rounds), now)
	return true
}

// applySurrender concedes the whole match for the given player: the current
// round is recorded with the opponent as winner and no later round is
// played.
func applySurrender(g *model.GameState, playerID model.PlayerID, now time.Time) error {
	p := g.Player(playerID)
	if p == nil {
		return model.ErrPlayerNotInGame
	}

	result := rules.SurrenderResult(g, playerID)
	g.Rounds = append(g.Rounds, result)
	endMatch(g, result.WinnerID, now)
	return nil
}

// applyDisconnect flags the player as dropped. When every player has
// dropped from an active match it is force-ended as incomplete; the
// returned bool reports that force-end.
func applyDisconnect(g *model.GameState, playerID model.PlayerID, now time.Time) (bool, error) {
	p := g.Player(playerID)
	if p == nil {
		return false, model.ErrPlayerNotInGame
	}

	p.Disconnected = true
	t := now
	p.LastDisconnectAt = &t

	if g.Status == model.StatusActive && g.AllDisconnected() {
		g.Incomplete = true
		endMatch(g, model.WinnerIncomplete, now)
		return true, nil
	}
	return false, nil
}

// applyReconnect clears the player's disconnected flag
func applyReconnect(g *model.GameState, playerID model.PlayerID, now time.Time) error {
	p := g.Player(playerID)
	if p == nil {
		return model.ErrPlayerNotInGame
	}
	p.Disconnected = false
	t := now
	p.LastReconnectAt = &t
	return nil
}

func endMatch(g *model.GameState, winner model.PlayerID, now time.Time) {
	g.Status = model.StatusEnded
	g.WinnerID = winner
	t := now
	g.EndedAt = &t
}

func flipPriority(g *model.GameState) {
	if opp := g.Opponent(g.PriorityPlayerID); opp != nil {
		g.PriorityPlayerID = opp.ID
	}
}
