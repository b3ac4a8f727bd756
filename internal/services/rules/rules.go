// Package rules holds the pure decision functions for round and match
// outcomes. Nothing here touches storage or mutates game state, so every
// rule is testable in isolation.
package rules

import (
	"github.com/duelhq/duelsync/internal/model"
)

// EvaluateRound checks the live player morale values for a round-end
// condition and, if one holds, returns the finished round's result.
//
// Elimination is checked before the century mark: when both conditions hold
// at once (possible after a large swing), hitting zero loses first. Players
// are scanned in join order, so the host's counters decide ties.
func EvaluateRound(game *model.GameState) (model.RoundResult, bool) {
	for i := range game.Players {
		p := &game.Players[i]
		if p.Morale <= 0 {
			opp := game.Opponent(p.ID)
			if opp == nil {
				break
			}
			return buildResult(game, opp.ID, model.EndReasonMoraleAtOrBelowZero), true
		}
	}
	for i := range game.Players {
		p := &game.Players[i]
		if p.Morale >= model.MoraleWinThreshold {
			return buildResult(game, p.ID, model.EndReasonMoraleAtOrAboveHundred), true
		}
	}
	return model.RoundResult{}, false
}

// SurrenderResult builds the round result for a concession by the given
// player. The opponent wins the round regardless of morale.
func SurrenderResult(game *model.GameState, surrendering model.PlayerID) model.RoundResult {
	winner := model.PlayerID("")
	if opp := game.Opponent(surrendering); opp != nil {
		winner = opp.ID
	}
	return buildResult(game, winner, model.EndReasonSurrender)
}

// FinalizeMatch decides the match winner from the completed round results.
//
// A player who won both rounds wins outright. A split goes to whoever won
// the more decisive round, measured by morale gap at round end; equal gaps
// fall back to the first round's winner.
func FinalizeMatch(rounds []model.RoundResult) model.PlayerID {
	if len(rounds) == 0 {
		return ""
	}
	if len(rounds) == 1 {
		return rounds[0].WinnerID
	}
	first, second := rounds[0], rounds[1]
	if first.WinnerID == second.WinnerID {
		return first.WinnerID
	}
	if second.MoraleGap() > first.MoraleGap() {
		return second.WinnerID
	}
	return first.WinnerID
}

func buildResult(game *model.GameState, winner model.PlayerID, reason model.RoundEndReason) model.RoundResult {
	morale := make(map[model.PlayerID]int, len(game.Players))
	for i := range game.Players {
		morale[game.Players[i].ID] = game.Players[i].Morale
	}
	return model.RoundResult{
		RoundNumber: game.CurrentRound,
		EndTurn:     game.CurrentTurn,
		FinalMorale: morale,
		WinnerID:    winner,
		EndReason:   reason,
	}
}
