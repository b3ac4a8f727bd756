package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/duelhq/duelsync/internal/model"
	"github.com/duelhq/duelsync/internal/storage"
)

// deletedPayload is published on the watch channel when a document is removed
const deletedPayload = "null"

// Storage is a Redis-backed implementation of the storage interface.
// Game documents are JSON values; the revision check runs inside a
// WATCH/MULTI/EXEC transaction so concurrent writers conflict instead of
// clobbering each other. Watch subscriptions ride on pub/sub.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Game document operations

func (s *Storage) SaveGame(ctx context.Context, game *model.GameState) error {
	key := gameKey(game.Code)

	payload, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreWrite, err)
	}

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if game.Version != 1 {
				return model.ErrVersionConflict
			}
		case err != nil:
			return fmt.Errorf("%w: %v", model.ErrStoreRead, err)
		default:
			if game.Version == 1 {
				return model.ErrVersionConflict
			}
			var current model.GameState
			if err := json.Unmarshal(data, &current); err != nil {
				return fmt.Errorf("%w: %v", model.ErrCorruptGameState, err)
			}
			if current.Version != game.Version-1 {
				return model.ErrVersionConflict
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.cfg.GameTTL)
			pipe.Publish(ctx, watchChannel(game.Code), payload)
			return nil
		})
		return err
	}

	err = s.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		// Another writer slipped in between our read and the EXEC
		return model.ErrVersionConflict
	}
	if err != nil && !isDomainError(err) {
		return fmt.Errorf("%w: %v", model.ErrStoreWrite, err)
	}
	return err
}

func (s *Storage) GetGame(ctx context.Context, code model.GameCode) (*model.GameState, error) {
	data, err := s.client.Get(ctx, gameKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("%w: %v", model.ErrStoreRead, err)
	}

	game, err := decodeGame(data)
	if err != nil {
		return nil, err
	}
	return game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, code model.GameCode) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, gameKey(code))
	pipe.Publish(ctx, watchChannel(code), deletedPayload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreWrite, err)
	}
	return nil
}

func (s *Storage) GameExists(ctx context.Context, code model.GameCode) (bool, error) {
	exists, err := s.client.Exists(ctx, gameKey(code)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrStoreRead, err)
	}
	return exists > 0, nil
}

func (s *Storage) WatchGame(ctx context.Context, code model.GameCode, onChange func(*model.GameState)) (storage.UnsubscribeFunc, error) {
	pubsub := s.client.Subscribe(ctx, watchChannel(code))

	// Force the subscription to be established before returning, so a
	// save immediately after WatchGame is not missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("%w: %v", model.ErrStoreRead, err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			if msg.Payload == deletedPayload {
				onChange(nil)
				continue
			}
			game, err := decodeGame([]byte(msg.Payload))
			if err != nil {
				// Skip snapshots that fail the corruption check
				continue
			}
			onChange(game)
		}
	}()

	return func() {
		_ = pubsub.Close()
	}, nil
}

// Match history operations

func (s *Storage) SaveMatchRecord(ctx context.Context, record *model.MatchRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreWrite, err)
	}

	// Pipeline keeps record and index in step
	pipe := s.client.Pipeline()
	pipe.Set(ctx, matchKey(record.ID), data, s.cfg.MatchTTL)
	pipe.RPush(ctx, matchIndexKey(), string(record.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreWrite, err)
	}
	return nil
}

func (s *Storage) GetMatchRecord(ctx context.Context, id model.MatchID) (*model.MatchRecord, error) {
	data, err := s.client.Get(ctx, matchKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrMatchNotFound
		}
		return nil, fmt.Errorf("%w: %v", model.ErrStoreRead, err)
	}

	var record model.MatchRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCorruptGameState, err)
	}
	return &record, nil
}

func (s *Storage) ListMatchRecords(ctx context.Context) ([]*model.MatchRecord, error) {
	ids, err := s.client.LRange(ctx, matchIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreRead, err)
	}
	if len(ids) == 0 {
		return []*model.MatchRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = matchKey(model.MatchID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreRead, err)
	}

	records := make([]*model.MatchRecord, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // record may have expired
		}
		var record model.MatchRecord
		if err := json.Unmarshal([]byte(val.(string)), &record); err != nil {
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}

// PruneEndedGames scans game keys and deletes ended games older than the cutoff

func (s *Storage) PruneEndedGames(ctx context.Context, endedBefore time.Time) (int, error) {
	pruned := 0
	iter := s.client.Scan(ctx, 0, gameKeyPattern(), 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			continue // expired between scan and get
		}
		var game model.GameState
		if err := json.Unmarshal(data, &game); err != nil {
			continue
		}
		if game.Status != model.StatusEnded || game.EndedAt == nil || !game.EndedAt.Before(endedBefore) {
			continue
		}
		if err := s.DeleteGame(ctx, game.Code); err != nil {
			return pruned, err
		}
		pruned++
	}
	if err := iter.Err(); err != nil {
		return pruned, fmt.Errorf("%w: %v", model.ErrStoreRead, err)
	}
	return pruned, nil
}

// decodeGame unmarshals and fail-closed validates a game document
func decodeGame(data []byte) (*model.GameState, error) {
	var game model.GameState
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCorruptGameState, err)
	}
	if err := game.Validate(); err != nil {
		return nil, err
	}
	return &game, nil
}

// isDomainError reports whether err is one of ours rather than an
// infrastructure failure that still needs wrapping
func isDomainError(err error) bool {
	return errors.Is(err, model.ErrVersionConflict) ||
		errors.Is(err, model.ErrCorruptGameState) ||
		errors.Is(err, model.ErrStoreRead)
}
