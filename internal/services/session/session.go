package session

import (
	"context"
	"sync"

	"github.com/duelhq/duelsync/internal/dependencies/clock"
	"github.com/duelhq/duelsync/internal/model"
	"github.com/duelhq/duelsync/internal/services/history"
	"github.com/duelhq/duelsync/internal/storage"
)

// Session is one client's live handle on a match: it owns that client's
// view of the game document, applies local actions optimistically, and
// folds in remote snapshots pushed by the store watch.
//
// Local state only moves past a mutation once the version-conditional
// store write succeeds; a failed write leaves the last confirmed state
// untouched, so the client never believes a turn advanced when the shared
// document did not.
type Session struct {
	storage storage.Store
	history *history.Service
	clock   clock.Clock

	playerID model.PlayerID

	mu       sync.Mutex
	game     *model.GameState
	unsub    storage.UnsubscribeFunc
	onUpdate func(*model.GameState)
}

// NewSession wraps an already created-or-joined game state in a client
// handle for the given player. The history service may be nil when match
// records are persisted elsewhere.
func NewSession(
	storage storage.Store,
	history *history.Service,
	clock clock.Clock,
	playerID model.PlayerID,
	game *model.GameState,
) *Session {
	return &Session{
		storage:  storage,
		history:  history,
		clock:    clock,
		playerID: playerID,
		game:     game.Clone(),
	}
}

// State returns a snapshot of the last confirmed game state, or nil if the
// game document has been deleted remotely
func (s *Session) State() *model.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return nil
	}
	return s.game.Clone()
}

// PlayerID returns the identity this session acts as
func (s *Session) PlayerID() model.PlayerID {
	return s.playerID
}

// AdjustCounter applies a delta to this player's morale or energy counter
func (s *Session) AdjustCounter(ctx context.Context, kind model.CounterKind, delta int) (*model.GameState, error) {
	return s.mutate(ctx, func(g *model.GameState) (bool, error) {
		if g.Status != model.StatusActive {
			return false, model.ErrInvalidStateTransition
		}
		return false, applyAdjust(g, s.playerID, kind, delta)
	})
}

// AdvanceTurn resolves the current turn against the round-end conditions
func (s *Session) AdvanceTurn(ctx context.Context) (*model.GameState, error) {
	return s.mutate(ctx, func(g *model.GameState) (bool, error) {
		if g.Status != model.StatusActive {
			return false, model.ErrInvalidStateTransition
		}
		return applyAdvance(g, s.clock.Now()), nil
	})
}

// Surrender concedes the whole match for this player
func (s *Session) Surrender(ctx context.Context) (*model.GameState, error) {
	return s.mutate(ctx, func(g *model.GameState) (bool, error) {
		if g.Status != model.StatusActive {
			return false, model.ErrInvalidStateTransition
		}
		if err := applySurrender(g, s.playerID, s.clock.Now()); err != nil {
			return false, err
		}
		return true, nil
	})
}

// MarkDisconnected flags this player as dropped. On an already ended match
// it is a no-op.
func (s *Session) MarkDisconnected(ctx context.Context) (*model.GameState, error) {
	s.mu.Lock()
	if s.game != nil && s.game.Status == model.StatusEnded {
		state := s.game.Clone()
		s.mu.Unlock()
		return state, nil
	}
	s.mu.Unlock()

	return s.mutate(ctx, func(g *model.GameState) (bool, error) {
		return applyDisconnect(g, s.playerID, s.clock.Now())
	})
}

// Watch subscribes this session to remote changes of the game document.
// onUpdate receives a private snapshot after each applied remote change,
// nil when the document is deleted. Close releases the subscription.
func (s *Session) Watch(ctx context.Context, onUpdate func(*model.GameState)) error {
	s.mu.Lock()
	if s.unsub != nil {
		s.mu.Unlock()
		return nil
	}
	s.onUpdate = onUpdate
	code := s.game.Code
	s.mu.Unlock()

	unsub, err := s.storage.WatchGame(ctx, code, s.applyRemote)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.unsub = unsub
	s.mu.Unlock()
	return nil
}

// Refresh re-reads the game document, replacing local state if the stored
// revision is newer
func (s *Session) Refresh(ctx context.Context) (*model.GameState, error) {
	s.mu.Lock()
	code := s.game.Code
	s.mu.Unlock()

	game, err := s.storage.GetGame(ctx, code)
	if err != nil {
		return nil, err
	}
	s.applyRemote(game)
	return s.State(), nil
}

// Close releases the watch subscription. Safe to call more than once and
// required on every exit path; a leaked subscription keeps receiving
// updates forever.
func (s *Session) Close() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.onUpdate = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// mutate runs the optimistic write cycle: clone the confirmed state, apply
// the transition to the clone, attempt the version-conditional save, and
// only then swap the clone in as confirmed. fn reports whether the match
// ended so a record can be persisted.
func (s *Session) mutate(ctx context.Context, fn func(*model.GameState) (bool, error)) (*model.GameState, error) {
	s.mu.Lock()
	if s.game == nil {
		s.mu.Unlock()
		return nil, model.ErrGameNotFound
	}
	next := s.game.Clone()
	s.mu.Unlock()

	matchEnded, err := fn(next)
	if err != nil {
		return nil, err
	}

	next.UpdatedAt = s.clock.Now()
	next.Version++
	// The save may synchronously echo through the watch callback, so the
	// lock must not be held across it
	if err := s.storage.SaveGame(ctx, next); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.game == nil || next.Version > s.game.Version {
		s.game = next
	}
	s.mu.Unlock()

	if matchEnded && s.history != nil {
		if _, err := s.history.RecordMatch(ctx, next); err != nil {
			return nil, err
		}
	}
	return next.Clone(), nil
}

// applyRemote folds a pushed snapshot into local state. Snapshots are
// applied only as whole replacements, and a snapshot at or behind the
// confirmed revision is dropped: it is either an echo of our own write or
// stale reordering from the transport.
func (s *Session) applyRemote(snapshot *model.GameState) {
	s.mu.Lock()

	if snapshot == nil {
		s.game = nil
		cb := s.onUpdate
		s.mu.Unlock()
		if cb != nil {
			cb(nil)
		}
		return
	}

	if s.game != nil && snapshot.Version <= s.game.Version {
		s.mu.Unlock()
		return
	}

	s.game = snapshot.Clone()
	cb := s.onUpdate
	s.mu.Unlock()

	if cb != nil {
		cb(snapshot.Clone())
	}
}
