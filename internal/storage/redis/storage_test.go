package redis

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/duelhq/duelsync/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.GameTTL = time.Hour
	cfg.MatchTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) testGame(code model.GameCode) *model.GameState {
	return &model.GameState{
		Code:   code,
		Status: model.StatusActive,
		Players: []model.PlayerState{
			{ID: "host", DisplayName: "Alice", Morale: 50, IsHost: true},
			{ID: "guest", DisplayName: "Bob", Morale: 50},
		},
		CurrentTurn:      1,
		CurrentRound:     1,
		PriorityPlayerID: "host",
		StartedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
		Version:          1,
	}
}

// Game document tests

func (s *StorageSuite) TestSaveAndGetGame() {
	game := s.testGame("ABC123")

	err := s.storage.SaveGame(s.ctx, game)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetGame(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(game.Code, retrieved.Code)
	s.Equal(game.Status, retrieved.Status)
	s.Len(retrieved.Players, 2)
	s.Equal(int64(1), retrieved.Version)
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "NOSUCH")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestGetGameCorruptDocument() {
	s.mini.Set(gameKey("BROKEN"), "{not json")

	_, err := s.storage.GetGame(s.ctx, "BROKEN")
	s.ErrorIs(err, model.ErrCorruptGameState)
}

func (s *StorageSuite) TestGetGameFailsClosedOnInvalidDocument() {
	// Parses fine but violates the match invariants (no host)
	game := s.testGame("BADDOC")
	game.Players[0].IsHost = false
	data, err := json.Marshal(game)
	s.Require().NoError(err)
	s.mini.Set(gameKey("BADDOC"), string(data))

	_, err = s.storage.GetGame(s.ctx, "BADDOC")
	s.ErrorIs(err, model.ErrCorruptGameState)
}

func (s *StorageSuite) TestSaveGameVersionConflictOnCreate() {
	s.Require().NoError(s.storage.SaveGame(s.ctx, s.testGame("ABC123")))

	err := s.storage.SaveGame(s.ctx, s.testGame("ABC123"))
	s.ErrorIs(err, model.ErrVersionConflict)
}

func (s *StorageSuite) TestSaveGameVersionConflictOnUpdate() {
	game := s.testGame("ABC123")
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))

	first := game.Clone()
	first.CurrentTurn = 2
	first.Version = 2
	s.Require().NoError(s.storage.SaveGame(s.ctx, first))

	// Stale writer never saw the first update
	second := game.Clone()
	second.CurrentTurn = 3
	second.Version = 2
	err := s.storage.SaveGame(s.ctx, second)
	s.ErrorIs(err, model.ErrVersionConflict)

	retrieved, err := s.storage.GetGame(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(2, retrieved.CurrentTurn)
}

func (s *StorageSuite) TestSaveGameUpdateMissingDocument() {
	game := s.testGame("GHOST1")
	game.Version = 5
	err := s.storage.SaveGame(s.ctx, game)
	s.ErrorIs(err, model.ErrVersionConflict)
}

func (s *StorageSuite) TestSaveGameSetsTTL() {
	s.Require().NoError(s.storage.SaveGame(s.ctx, s.testGame("ABC123")))

	ttl := s.mini.TTL(gameKey("ABC123"))
	s.Equal(time.Hour, ttl)
}

func (s *StorageSuite) TestDeleteGame() {
	s.Require().NoError(s.storage.SaveGame(s.ctx, s.testGame("ABC123")))

	err := s.storage.DeleteGame(s.ctx, "ABC123")
	s.Require().NoError(err)

	_, err = s.storage.GetGame(s.ctx, "ABC123")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestGameExists() {
	exists, err := s.storage.GameExists(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.storage.SaveGame(s.ctx, s.testGame("ABC123")))

	exists, err = s.storage.GameExists(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.True(exists)
}

// Watch tests

func (s *StorageSuite) TestWatchGameReceivesUpdates() {
	var mu sync.Mutex
	var seen []*model.GameState

	unsub, err := s.storage.WatchGame(s.ctx, "ABC123", func(g *model.GameState) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, g)
	})
	s.Require().NoError(err)
	defer unsub()

	s.Require().NoError(s.storage.SaveGame(s.ctx, s.testGame("ABC123")))

	s.Require().Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	s.Equal(model.GameCode("ABC123"), seen[0].Code)
}

func (s *StorageSuite) TestWatchGameDeleteDeliversNil() {
	var mu sync.Mutex
	var seen []*model.GameState

	unsub, err := s.storage.WatchGame(s.ctx, "ABC123", func(g *model.GameState) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, g)
	})
	s.Require().NoError(err)
	defer unsub()

	s.Require().NoError(s.storage.SaveGame(s.ctx, s.testGame("ABC123")))
	s.Require().NoError(s.storage.DeleteGame(s.ctx, "ABC123"))

	s.Require().Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	s.NotNil(seen[0])
	s.Nil(seen[1])
}

func (s *StorageSuite) TestWatchGameUnsubscribeStopsUpdates() {
	var mu sync.Mutex
	count := 0

	unsub, err := s.storage.WatchGame(s.ctx, "ABC123", func(g *model.GameState) {
		mu.Lock()
		defer mu.Unlock()
		count++
	})
	s.Require().NoError(err)

	s.Require().NoError(s.storage.SaveGame(s.ctx, s.testGame("ABC123")))

	s.Require().Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)

	unsub()

	updated := s.testGame("ABC123")
	updated.Version = 2
	s.Require().NoError(s.storage.SaveGame(s.ctx, updated))

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	s.Equal(1, count)
}

// Match history tests

func (s *StorageSuite) TestSaveAndGetMatchRecord() {
	record := &model.MatchRecord{
		ID:       "match-1",
		GameCode: "ABC123",
		Players: map[model.PlayerID]model.MatchPlayer{
			"host":  {Name: "Alice", DeckLabel: "Control"},
			"guest": {Name: "Bob", DeckLabel: "Aggro"},
		},
		WinnerID: "host",
		WinType:  model.WinTypeNormal,
		EndedAt:  time.Now().UTC(),
	}

	err := s.storage.SaveMatchRecord(s.ctx, record)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetMatchRecord(s.ctx, "match-1")
	s.Require().NoError(err)
	s.Equal(record.GameCode, retrieved.GameCode)
	s.Equal(record.WinnerID, retrieved.WinnerID)
	s.Equal(record.WinType, retrieved.WinType)
}

func (s *StorageSuite) TestGetMatchRecordNotFound() {
	_, err := s.storage.GetMatchRecord(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *StorageSuite) TestListMatchRecordsInsertionOrder() {
	for _, id := range []model.MatchID{"m1", "m2", "m3"} {
		err := s.storage.SaveMatchRecord(s.ctx, &model.MatchRecord{ID: id, GameCode: "ABC123"})
		s.Require().NoError(err)
	}

	records, err := s.storage.ListMatchRecords(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.Equal(model.MatchID("m1"), records[0].ID)
	s.Equal(model.MatchID("m2"), records[1].ID)
	s.Equal(model.MatchID("m3"), records[2].ID)
}

func (s *StorageSuite) TestListMatchRecordsSkipsExpired() {
	for _, id := range []model.MatchID{"m1", "m2"} {
		err := s.storage.SaveMatchRecord(s.ctx, &model.MatchRecord{ID: id, GameCode: "ABC123"})
		s.Require().NoError(err)
	}
	s.mini.Del(matchKey("m1"))

	records, err := s.storage.ListMatchRecords(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(model.MatchID("m2"), records[0].ID)
}

func (s *StorageSuite) TestListMatchRecordsEmpty() {
	records, err := s.storage.ListMatchRecords(s.ctx)
	s.Require().NoError(err)
	s.Empty(records)
}

// Prune tests

func (s *StorageSuite) TestPruneEndedGames() {
	now := time.Now().UTC()
	old := now.Add(-48 * time.Hour)
	recent := now.Add(-time.Hour)

	ended := s.testGame("OLDONE")
	ended.Status = model.StatusEnded
	ended.WinnerID = "host"
	ended.EndedAt = &old
	s.Require().NoError(s.storage.SaveGame(s.ctx, ended))

	fresh := s.testGame("FRESH1")
	fresh.Status = model.StatusEnded
	fresh.WinnerID = "host"
	fresh.EndedAt = &recent
	s.Require().NoError(s.storage.SaveGame(s.ctx, fresh))

	active := s.testGame("LIVE42")
	s.Require().NoError(s.storage.SaveGame(s.ctx, active))

	pruned, err := s.storage.PruneEndedGames(s.ctx, now.Add(-24*time.Hour))
	s.Require().NoError(err)
	s.Equal(1, pruned)

	_, err = s.storage.GetGame(s.ctx, "OLDONE")
	s.ErrorIs(err, model.ErrGameNotFound)

	_, err = s.storage.GetGame(s.ctx, "FRESH1")
	s.NoError(err)
	_, err = s.storage.GetGame(s.ctx, "LIVE42")
	s.NoError(err)
}
