package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/duelhq/duelsync/internal/dependencies/mocks"
	"github.com/duelhq/duelsync/internal/model"
	"github.com/duelhq/duelsync/internal/storage/memory"
	"github.com/duelhq/duelsync/internal/testutil"
)

type JanitorSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	janitor *Janitor
	ctx     context.Context
}

func TestJanitorSuite(t *testing.T) {
	suite.Run(t, new(JanitorSuite))
}

func (s *JanitorSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.janitor = NewJanitor(s.storage, s.clock, DefaultJanitorConfig(), testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *JanitorSuite) saveEndedGame(code model.GameCode, endedAgo time.Duration) {
	ended := s.clock.Now().Add(-endedAgo)
	game := &model.GameState{
		Code:   code,
		Status: model.StatusEnded,
		Players: []model.PlayerState{
			{ID: "host", IsHost: true},
			{ID: "guest"},
		},
		CurrentTurn:      1,
		CurrentRound:     2,
		PriorityPlayerID: "host",
		WinnerID:         "host",
		EndedAt:          &ended,
		Version:          1,
	}
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))
}

func (s *JanitorSuite) TestSweepDeletesOnlyExpiredEndedGames() {
	s.saveEndedGame("OLDONE", 48*time.Hour)
	s.saveEndedGame("FRESH1", time.Hour)

	active := &model.GameState{
		Code:   "LIVE42",
		Status: model.StatusActive,
		Players: []model.PlayerState{
			{ID: "host", IsHost: true},
			{ID: "guest"},
		},
		CurrentTurn:      1,
		CurrentRound:     1,
		PriorityPlayerID: "host",
		Version:          1,
	}
	s.Require().NoError(s.storage.SaveGame(s.ctx, active))

	pruned, err := s.janitor.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, pruned)

	_, err = s.storage.GetGame(s.ctx, "OLDONE")
	s.ErrorIs(err, model.ErrGameNotFound)
	_, err = s.storage.GetGame(s.ctx, "FRESH1")
	s.NoError(err)
	_, err = s.storage.GetGame(s.ctx, "LIVE42")
	s.NoError(err)
}

func (s *JanitorSuite) TestSweepKeepsMatchRecords() {
	s.saveEndedGame("OLDONE", 48*time.Hour)
	s.Require().NoError(s.storage.SaveMatchRecord(s.ctx, &model.MatchRecord{ID: "m1", GameCode: "OLDONE"}))

	_, err := s.janitor.Sweep(s.ctx)
	s.Require().NoError(err)

	records, err := s.storage.ListMatchRecords(s.ctx)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *JanitorSuite) TestStopWithoutStart() {
	s.NoError(s.janitor.Stop())
}
