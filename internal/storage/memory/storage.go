package memory

import (
	"context"
	"sync"
	"time"

	"github.com/duelhq/duelsync/internal/model"
	"github.com/duelhq/duelsync/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Documents are deep-copied on the way in and out so callers never share
// state through the store.
type Storage struct {
	mu sync.RWMutex

	games   map[model.GameCode]*model.GameState
	matches map[model.MatchID]*model.MatchRecord
	// match records in insertion order for listing
	matchOrder []model.MatchID

	watchers      map[model.GameCode]map[int]func(*model.GameState)
	nextWatcherID int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games:    make(map[model.GameCode]*model.GameState),
		matches:  make(map[model.MatchID]*model.MatchRecord),
		watchers: make(map[model.GameCode]map[int]func(*model.GameState)),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Game document operations

func (s *Storage) SaveGame(ctx context.Context, game *model.GameState) error {
	s.mu.Lock()
	existing, ok := s.games[game.Code]
	if game.Version == 1 {
		if ok {
			s.mu.Unlock()
			return model.ErrVersionConflict
		}
	} else {
		if !ok || existing.Version != game.Version-1 {
			s.mu.Unlock()
			return model.ErrVersionConflict
		}
	}
	s.games[game.Code] = game.Clone()
	callbacks := s.watchersFor(game.Code)
	s.mu.Unlock()

	// Notify outside the lock; callbacks may call back into the store
	for _, cb := range callbacks {
		cb(game.Clone())
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, code model.GameCode) (*model.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[code]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) DeleteGame(ctx context.Context, code model.GameCode) error {
	s.mu.Lock()
	delete(s.games, code)
	callbacks := s.watchersFor(code)
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(nil)
	}
	return nil
}

func (s *Storage) GameExists(ctx context.Context, code model.GameCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.games[code]
	return ok, nil
}

func (s *Storage) WatchGame(ctx context.Context, code model.GameCode, onChange func(*model.GameState)) (storage.UnsubscribeFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchers[code] == nil {
		s.watchers[code] = make(map[int]func(*model.GameState))
	}
	id := s.nextWatcherID
	s.nextWatcherID++
	s.watchers[code][id] = onChange

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers[code], id)
		if len(s.watchers[code]) == 0 {
			delete(s.watchers, code)
		}
	}, nil
}

// watchersFor snapshots the callback set for a code. Caller must hold mu.
func (s *Storage) watchersFor(code model.GameCode) []func(*model.GameState) {
	regs := s.watchers[code]
	callbacks := make([]func(*model.GameState), 0, len(regs))
	for _, cb := range regs {
		callbacks = append(callbacks, cb)
	}
	return callbacks
}

// Match history operations

func (s *Storage) SaveMatchRecord(ctx context.Context, record *model.MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[record.ID]; !ok {
		s.matchOrder = append(s.matchOrder, record.ID)
	}
	s.matches[record.ID] = record
	return nil
}

func (s *Storage) GetMatchRecord(ctx context.Context, id model.MatchID) (*model.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.matches[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return record, nil
}

func (s *Storage) ListMatchRecords(ctx context.Context) ([]*model.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]*model.MatchRecord, 0, len(s.matchOrder))
	for _, id := range s.matchOrder {
		records = append(records, s.matches[id])
	}
	return records, nil
}

// PruneEndedGames deletes ended games older than the cutoff
func (s *Storage) PruneEndedGames(ctx context.Context, endedBefore time.Time) (int, error) {
	s.mu.Lock()
	var pruned []model.GameCode
	for code, game := range s.games {
		if game.Status == model.StatusEnded && game.EndedAt != nil && game.EndedAt.Before(endedBefore) {
			delete(s.games, code)
			pruned = append(pruned, code)
		}
	}
	notify := make(map[model.GameCode][]func(*model.GameState), len(pruned))
	for _, code := range pruned {
		notify[code] = s.watchersFor(code)
	}
	s.mu.Unlock()

	for _, callbacks := range notify {
		for _, cb := range callbacks {
			cb(nil)
		}
	}
	return len(pruned), nil
}
