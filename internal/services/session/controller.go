package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/duelhq/duelsync/internal/dependencies/clock"
	"github.com/duelhq/duelsync/internal/dependencies/random"
	"github.com/duelhq/duelsync/internal/model"
	"github.com/duelhq/duelsync/internal/services/history"
	"github.com/duelhq/duelsync/internal/storage"
)

const (
	// GameCodeLength is the length of generated game codes
	GameCodeLength = 6
	// GameCodeAlphabet is the characters used in game codes
	GameCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ControllerInterface defines the operations available on a game session
type ControllerInterface interface {
	CreateGame(ctx context.Context, host model.PlayerState) (*model.GameState, error)
	JoinGame(ctx context.Context, code model.GameCode, guest model.PlayerState) (*model.GameState, error)
	GetGame(ctx context.Context, code model.GameCode) (*model.GameState, error)
	AdjustCounter(ctx context.Context, code model.GameCode, playerID model.PlayerID, kind model.CounterKind, delta int) (*model.GameState, error)
	AdvanceTurn(ctx context.Context, code model.GameCode) (*model.GameState, error)
	Surrender(ctx context.Context, code model.GameCode, playerID model.PlayerID) (*model.GameState, error)
	MarkDisconnected(ctx context.Context, code model.GameCode, playerID model.PlayerID) (*model.GameState, error)
	WatchGame(ctx context.Context, code model.GameCode, onChange func(*model.GameState)) (storage.UnsubscribeFunc, error)
}

// Controller implements the match state machine over the shared game
// document. It holds no per-match state of its own: every operation reads
// the document, applies a transition, and writes the result back with a
// version-conditional save. A conflicting concurrent writer surfaces as
// ErrVersionConflict; there are no automatic retries.
type Controller struct {
	storage storage.Store
	history *history.Service
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new session controller
func NewController(
	storage storage.Store,
	history *history.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		history: history,
		clock:   clock,
		random:  random,
		logger:  logger.With("component", "session"),
	}
}

// Ensure Controller implements the interface
var _ ControllerInterface = (*Controller)(nil)

// CreateGame creates a new game with the given player as host
func (c *Controller) CreateGame(ctx context.Context, host model.PlayerState) (*model.GameState, error) {
	now := c.clock.Now()

	// Generate unique game code
	var code model.GameCode
	for {
		code = model.GameCode(c.random.String(GameCodeLength, GameCodeAlphabet))
		exists, err := c.storage.GameExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	host.Morale = model.StartingMorale
	host.Energy = 0
	host.MaxEnergyThisTurn = 0
	host.IsHost = true

	game := &model.GameState{
		Code:             code,
		Status:           model.StatusSetup,
		Players:          []model.PlayerState{host},
		CurrentTurn:      1,
		CurrentRound:     1,
		PriorityPlayerID: host.ID,
		Rounds:           []model.RoundResult{},
		StartedAt:        now,
		UpdatedAt:        now,
		Version:          1,
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("created game", "game_code", code, "host", host.ID)
	return game, nil
}

// JoinGame adds a guest to a game, or reconnects a player already in it
func (c *Controller) JoinGame(ctx context.Context, code model.GameCode, guest model.PlayerState) (*model.GameState, error) {
	game, err := c.storage.GetGame(ctx, code)
	if err != nil {
		return nil, err
	}
	now := c.clock.Now()

	// A player already seated is reconnecting, not joining
	if game.Player(guest.ID) != nil {
		if game.Status == model.StatusEnded {
			// Nothing to clear; the match is read-only for display
			return game, nil
		}
		if err := applyReconnect(game, guest.ID, now); err != nil {
			return nil, err
		}
		if err := c.save(ctx, game, now); err != nil {
			return nil, err
		}
		c.logger.Info("player reconnected", "game_code", code, "player", guest.ID)
		return game, nil
	}

	if game.IsFull() {
		return nil, model.ErrGameFull
	}
	if game.Status != model.StatusSetup {
		return nil, model.ErrInvalidStateTransition
	}

	guest.Morale = model.StartingMorale
	guest.Energy = 0
	guest.MaxEnergyThisTurn = 0
	guest.IsHost = false
	game.Players = append(game.Players, guest)

	// Uniform pick between the two seats
	game.PriorityPlayerID = game.Players[c.random.Intn(len(game.Players))].ID
	game.Status = model.StatusActive

	if err := c.save(ctx, game, now); err != nil {
		return nil, err
	}

	c.logger.Info("player joined", "game_code", code, "player", guest.ID, "priority", game.PriorityPlayerID)
	return game, nil
}

// GetGame retrieves a game by code
func (c *Controller) GetGame(ctx context.Context, code model.GameCode) (*model.GameState, error) {
	return c.storage.GetGame(ctx, code)
}

// AdjustCounter applies a delta to a player's morale or energy counter
func (c *Controller) AdjustCounter(ctx context.Context, code model.GameCode, playerID model.PlayerID, kind model.CounterKind, delta int) (*model.GameState, error) {
	game, err := c.storage.GetGame(ctx, code)
	if err != nil {
		return nil, err
	}
	if game.Status != model.StatusActive {
		return nil, model.ErrInvalidStateTransition
	}

	if err := applyAdjust(game, playerID, kind, delta); err != nil {
		return nil, err
	}

	if err := c.save(ctx, game, c.clock.Now()); err != nil {
		return nil, err
	}
	return game, nil
}

// AdvanceTurn resolves the current turn: it evaluates the round-end
// conditions and advances the turn, the round, or ends the match
func (c *Controller) AdvanceTurn(ctx context.Context, code model.GameCode) (*model.GameState, error) {
	game, err := c.storage.GetGame(ctx, code)
	if err != nil {
		return nil, err
	}
	if game.Status != model.StatusActive {
		return nil, model.ErrInvalidStateTransition
	}

	now := c.clock.Now()
	matchEnded := applyAdvance(game, now)

	if err := c.save(ctx, game, now); err != nil {
		return nil, err
	}

	if matchEnded {
		if _, err := c.history.RecordMatch(ctx, game); err != nil {
			return nil, err
		}
		c.logger.Info("match ended", "game_code", code, "winner", game.WinnerID)
	}
	return game, nil
}

// Surrender concedes the whole match for the given player
func (c *Controller) Surrender(ctx context.Context, code model.GameCode, playerID model.PlayerID) (*model.GameState, error) {
	game, err := c.storage.GetGame(ctx, code)
	if err != nil {
		return nil, err
	}
	if game.Status != model.StatusActive {
		return nil, model.ErrInvalidStateTransition
	}

	now := c.clock.Now()
	if err := applySurrender(game, playerID, now); err != nil {
		return nil, err
	}

	if err := c.save(ctx, game, now); err != nil {
		return nil, err
	}

	if _, err := c.history.RecordMatch(ctx, game); err != nil {
		return nil, err
	}
	c.logger.Info("match ended by surrender", "game_code", code, "surrendered", playerID, "winner", game.WinnerID)
	return game, nil
}

// MarkDisconnected flags a player as dropped. When both players have
// dropped from an active match it is force-ended as incomplete.
func (c *Controller) MarkDisconnected(ctx context.Context, code model.GameCode, playerID model.PlayerID) (*model.GameState, error) {
	game, err := c.storage.GetGame(ctx, code)
	if err != nil {
		return nil, err
	}
	if game.Status == model.StatusEnded {
		// Terminal; repeated disconnects must not append another record
		return game, nil
	}

	now := c.clock.Now()
	forceEnded, err := applyDisconnect(game, playerID, now)
	if err != nil {
		return nil, err
	}

	if err := c.save(ctx, game, now); err != nil {
		return nil, err
	}

	if forceEnded {
		if _, err := c.history.RecordMatch(ctx, game); err != nil {
			return nil, err
		}
		c.logger.Info("match abandoned", "game_code", code)
	}
	return game, nil
}

// WatchGame subscribes to changes of the game document
func (c *Controller) WatchGame(ctx context.Context, code model.GameCode, onChange func(*model.GameState)) (storage.UnsubscribeFunc, error) {
	return c.storage.WatchGame(ctx, code, onChange)
}

// save stamps and writes the mutated document at its next revision
func (c *Controller) save(ctx context.Context, game *model.GameState, now time.Time) error {
	game.UpdatedAt = now
	game.Version++
	return c.storage.SaveGame(ctx, game)
}
