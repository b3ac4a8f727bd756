package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/duelhq/duelsync/internal/model"
	"github.com/duelhq/duelsync/internal/storage/memory"
	"github.com/duelhq/duelsync/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) endedGame() *model.GameState {
	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ended := started.Add(30 * time.Minute)
	return &model.GameState{
		Code:   "ABC123",
		Status: model.StatusEnded,
		Players: []model.PlayerState{
			{ID: "host", DisplayName: "Alice", DeckLabel: "Control", IsHost: true},
			{ID: "guest", DisplayName: "Bob", DeckLabel: "Aggro"},
		},
		CurrentTurn:      4,
		CurrentRound:     2,
		PriorityPlayerID: "host",
		Rounds: []model.RoundResult{
			{RoundNumber: 1, EndTurn: 3, WinnerID: "guest", EndReason: model.EndReasonMoraleAtOrBelowZero,
				FinalMorale: map[model.PlayerID]int{"host": -5, "guest": 50}},
			{RoundNumber: 2, EndTurn: 4, WinnerID: "guest", EndReason: model.EndReasonMoraleAtOrAboveHundred,
				FinalMorale: map[model.PlayerID]int{"host": 40, "guest": 100}},
		},
		WinnerID:  "guest",
		StartedAt: started,
		EndedAt:   &ended,
		Version:   9,
	}
}

func (s *ServiceSuite) TestRecordMatch() {
	game := s.endedGame()

	record, err := s.service.RecordMatch(s.ctx, game)
	s.Require().NoError(err)

	s.NotEmpty(record.ID)
	s.Equal(model.GameCode("ABC123"), record.GameCode)
	s.Equal(model.PlayerID("guest"), record.WinnerID)
	s.Equal(model.WinTypeNormal, record.WinType)
	s.Len(record.Rounds, 2)
	s.Equal("Control", record.Players["host"].DeckLabel)
	s.Equal(game.StartedAt, record.StartedAt)
	s.Equal(*game.EndedAt, record.EndedAt)

	stored, err := s.service.GetMatch(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(record.ID, stored.ID)
}

func (s *ServiceSuite) TestRecordMatchSurrenderWinType() {
	game := s.endedGame()
	game.Rounds = game.Rounds[:1]
	game.Rounds[0].EndReason = model.EndReasonSurrender

	record, err := s.service.RecordMatch(s.ctx, game)
	s.Require().NoError(err)
	s.Equal(model.WinTypeSurrender, record.WinType)
}

func (s *ServiceSuite) TestRecordMatchIncompleteWinType() {
	game := s.endedGame()
	game.Rounds = nil
	game.WinnerID = model.WinnerIncomplete
	game.Incomplete = true

	record, err := s.service.RecordMatch(s.ctx, game)
	s.Require().NoError(err)
	s.Equal(model.WinTypeIncomplete, record.WinType)
	s.Equal(model.WinnerIncomplete, record.WinnerID)
}

func (s *ServiceSuite) TestListMatchesOrdered() {
	first, err := s.service.RecordMatch(s.ctx, s.endedGame())
	s.Require().NoError(err)
	second, err := s.service.RecordMatch(s.ctx, s.endedGame())
	s.Require().NoError(err)

	records, err := s.service.ListMatches(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(first.ID, records[0].ID)
	s.Equal(second.ID, records[1].ID)
}

func (s *ServiceSuite) TestGetMatchNotFound() {
	_, err := s.service.GetMatch(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrMatchNotFound)
}
