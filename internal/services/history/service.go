package history

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/duelhq/duelsync/internal/model"
	"github.com/duelhq/duelsync/internal/storage"
)

// Service persists and serves match records for statistics views
type Service struct {
	storage storage.Store
	logger  *slog.Logger
}

// New creates a new history service
func New(storage storage.Store, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.With("component", "history"),
	}
}

// RecordMatch builds and persists the match record for an ended game.
// Called once at the moment a match concludes; the record is never
// mutated afterward.
func (s *Service) RecordMatch(ctx context.Context, game *model.GameState) (*model.MatchRecord, error) {
	players := make(map[model.PlayerID]model.MatchPlayer, len(game.Players))
	for i := range game.Players {
		p := &game.Players[i]
		players[p.ID] = model.MatchPlayer{
			Name:      p.DisplayName,
			DeckLabel: p.DeckLabel,
		}
	}

	rounds := make([]model.RoundResult, len(game.Rounds))
	for i := range game.Rounds {
		rounds[i] = game.Rounds[i].Clone()
	}

	record := &model.MatchRecord{
		ID:        model.MatchID(uuid.NewString()),
		GameCode:  game.Code,
		Players:   players,
		Rounds:    rounds,
		WinnerID:  game.WinnerID,
		WinType:   winType(game),
		StartedAt: game.StartedAt,
	}
	if game.EndedAt != nil {
		record.EndedAt = *game.EndedAt
	}

	if err := s.storage.SaveMatchRecord(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("recorded match",
		"match_id", record.ID,
		"game_code", record.GameCode,
		"winner", record.WinnerID,
		"win_type", record.WinType)

	return record, nil
}

// GetMatch retrieves a single match record
func (s *Service) GetMatch(ctx context.Context, id model.MatchID) (*model.MatchRecord, error) {
	return s.storage.GetMatchRecord(ctx, id)
}

// ListMatches returns all match records in completion order
func (s *Service) ListMatches(ctx context.Context) ([]*model.MatchRecord, error) {
	return s.storage.ListMatchRecords(ctx)
}

// winType categorizes how the match concluded
func winType(game *model.GameState) model.WinType {
	if game.Incomplete {
		return model.WinTypeIncomplete
	}
	if n := len(game.Rounds); n > 0 && game.Rounds[n-1].EndReason == model.EndReasonSurrender {
		return model.WinTypeSurrender
	}
	return model.WinTypeNormal
}
