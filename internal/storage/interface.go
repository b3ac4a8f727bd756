package storage

import (
	"context"
	"time"

	"github.com/duelhq/duelsync/internal/model"
)

// UnsubscribeFunc tears down a watch registration. Callers must invoke it on
// every exit path; a leaked registration keeps pushing updates forever.
type UnsubscribeFunc func()

// Store defines the document-store contract for match data.
//
// Game documents are overwritten whole: SaveGame is a compare-and-swap on the
// document revision, so a writer only wins when it wrote against the revision
// it last read. Watch delivers full snapshots, nil on deletion.
type Store interface {
	// Game document operations
	//
	// SaveGame persists game if the stored revision equals game.Version-1
	// (or the document is absent and game.Version is 1). Otherwise it
	// returns model.ErrVersionConflict and leaves the document unchanged.
	SaveGame(ctx context.Context, game *model.GameState) error
	GetGame(ctx context.Context, code model.GameCode) (*model.GameState, error)
	DeleteGame(ctx context.Context, code model.GameCode) error
	GameExists(ctx context.Context, code model.GameCode) (bool, error)

	// WatchGame registers onChange for every subsequent write to the game
	// document. The callback receives a private snapshot (nil when the
	// document is deleted) and must not be invoked after unsubscribe.
	WatchGame(ctx context.Context, code model.GameCode, onChange func(*model.GameState)) (UnsubscribeFunc, error)

	// Match history operations
	SaveMatchRecord(ctx context.Context, record *model.MatchRecord) error
	GetMatchRecord(ctx context.Context, id model.MatchID) (*model.MatchRecord, error)
	ListMatchRecords(ctx context.Context) ([]*model.MatchRecord, error)

	// PruneEndedGames deletes ended game documents whose EndedAt is before
	// the cutoff, returning how many were removed. Match records are kept.
	PruneEndedGames(ctx context.Context, endedBefore time.Time) (int, error)
}
