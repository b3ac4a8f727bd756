package rules

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/duelhq/duelsync/internal/model"
)

type RulesSuite struct {
	suite.Suite
}

func TestRulesSuite(t *testing.T) {
	suite.Run(t, new(RulesSuite))
}

func (s *RulesSuite) game(hostMorale, guestMorale int) *model.GameState {
	return &model.GameState{
		Code:   "ABC123",
		Status: model.StatusActive,
		Players: []model.PlayerState{
			{ID: "host", Morale: hostMorale, IsHost: true},
			{ID: "guest", Morale: guestMorale},
		},
		CurrentTurn:      7,
		CurrentRound:     1,
		PriorityPlayerID: "host",
	}
}

// Round evaluation

func (s *RulesSuite) TestNoEndConditionMidRound() {
	_, ended := EvaluateRound(s.game(50, 50))
	s.False(ended)
}

func (s *RulesSuite) TestBoundaryValuesDoNotEndRound() {
	_, ended := EvaluateRound(s.game(1, 99))
	s.False(ended)
}

func (s *RulesSuite) TestMoraleAtZeroEliminates() {
	result, ended := EvaluateRound(s.game(0, 50))
	s.Require().True(ended)
	s.Equal(model.PlayerID("guest"), result.WinnerID)
	s.Equal(model.EndReasonMoraleAtOrBelowZero, result.EndReason)
}

func (s *RulesSuite) TestMoraleBelowZeroEliminates() {
	result, ended := EvaluateRound(s.game(50, -10))
	s.Require().True(ended)
	s.Equal(model.PlayerID("host"), result.WinnerID)
	s.Equal(model.EndReasonMoraleAtOrBelowZero, result.EndReason)
}

func (s *RulesSuite) TestMoraleAtHundredWins() {
	result, ended := EvaluateRound(s.game(100, 50))
	s.Require().True(ended)
	s.Equal(model.PlayerID("host"), result.WinnerID)
	s.Equal(model.EndReasonMoraleAtOrAboveHundred, result.EndReason)
}

func (s *RulesSuite) TestMoraleAboveHundredWins() {
	result, ended := EvaluateRound(s.game(40, 120))
	s.Require().True(ended)
	s.Equal(model.PlayerID("guest"), result.WinnerID)
}

func (s *RulesSuite) TestEliminationBeatsCentury() {
	// One player at or below zero while the other is at or above a hundred:
	// elimination is checked first
	result, ended := EvaluateRound(s.game(-5, 110))
	s.Require().True(ended)
	s.Equal(model.PlayerID("guest"), result.WinnerID)
	s.Equal(model.EndReasonMoraleAtOrBelowZero, result.EndReason)
}

func (s *RulesSuite) TestResultCapturesRoundContext() {
	game := s.game(0, 63)
	game.CurrentRound = 2
	game.CurrentTurn = 12

	result, ended := EvaluateRound(game)
	s.Require().True(ended)
	s.Equal(2, result.RoundNumber)
	s.Equal(12, result.EndTurn)
	s.Equal(0, result.FinalMorale["host"])
	s.Equal(63, result.FinalMorale["guest"])
}

// Surrender

func (s *RulesSuite) TestSurrenderAwardsOpponent() {
	result := SurrenderResult(s.game(80, 20), "host")
	s.Equal(model.PlayerID("guest"), result.WinnerID)
	s.Equal(model.EndReasonSurrender, result.EndReason)
}

// Match finalization

func (s *RulesSuite) round(num int, winner model.PlayerID, winnerMorale, loserMorale int) model.RoundResult {
	loser := model.PlayerID("guest")
	if winner == "guest" {
		loser = "host"
	}
	return model.RoundResult{
		RoundNumber: num,
		WinnerID:    winner,
		FinalMorale: map[model.PlayerID]int{winner: winnerMorale, loser: loserMorale},
	}
}

func (s *RulesSuite) TestSweepWinsMatch() {
	winner := FinalizeMatch([]model.RoundResult{
		s.round(1, "host", 100, 40),
		s.round(2, "host", 60, 0),
	})
	s.Equal(model.PlayerID("host"), winner)
}

func (s *RulesSuite) TestSplitGoesToLargerGap() {
	winner := FinalizeMatch([]model.RoundResult{
		s.round(1, "host", 100, 80), // gap 20
		s.round(2, "guest", 70, 0),  // gap 70
	})
	s.Equal(model.PlayerID("guest"), winner)
}

func (s *RulesSuite) TestEqualGapsGoToFirstRoundWinner() {
	winner := FinalizeMatch([]model.RoundResult{
		s.round(1, "host", 100, 70),  // gap 30
		s.round(2, "guest", 100, 70), // gap 30
	})
	s.Equal(model.PlayerID("host"), winner)
}

func (s *RulesSuite) TestSingleRoundMatch() {
	// Surrender ends the match after a single recorded round
	winner := FinalizeMatch([]model.RoundResult{
		s.round(1, "guest", 55, 45),
	})
	s.Equal(model.PlayerID("guest"), winner)
}

func (s *RulesSuite) TestNoRounds() {
	s.Equal(model.PlayerID(""), FinalizeMatch(nil))
}
