package model

// RoundEndReason says which condition ended a round
type RoundEndReason string

const (
	EndReasonMoraleAtOrBelowZero    RoundEndReason = "morale_at_or_below_zero"
	EndReasonMoraleAtOrAboveHundred RoundEndReason = "morale_at_or_above_hundred"
	EndReasonSurrender              RoundEndReason = "surrender"
)

// RoundResult records how a single round ended. Immutable once appended
// to GameState.Rounds.
type RoundResult struct {
	RoundNumber int
	EndTurn     int
	FinalMorale map[PlayerID]int
	// WinnerID is empty only when neither win condition held, which is
	// unreachable through normal play
	WinnerID  PlayerID
	EndReason RoundEndReason
}

// MoraleGap returns the absolute morale difference between the two players
// at round end. Used by match finalization to weigh round decisiveness.
func (r *RoundResult) MoraleGap() int {
	values := make([]int, 0, 2)
	for _, m := range r.FinalMorale {
		values = append(values, m)
	}
	if len(values) != 2 {
		return 0
	}
	gap := values[0] - values[1]
	if gap < 0 {
		gap = -gap
	}
	return gap
}

// Clone returns a deep copy of the round result
func (r *RoundResult) Clone() RoundResult {
	out := *r
	out.FinalMorale = make(map[PlayerID]int, len(r.FinalMorale))
	for id, m := range r.FinalMorale {
		out.FinalMorale[id] = m
	}
	return out
}
