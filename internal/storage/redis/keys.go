package redis

import (
	"fmt"

	"github.com/duelhq/duelsync/internal/model"
)

// Key prefix for all match-related data
const keyPrefix = "duelsync"

// gameKey returns the Redis key for a game document
func gameKey(code model.GameCode) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, code)
}

// gameKeyPattern matches all game document keys, for prune scans
func gameKeyPattern() string {
	return fmt.Sprintf("%s:game:*", keyPrefix)
}

// matchKey returns the Redis key for a match record
func matchKey(id model.MatchID) string {
	return fmt.Sprintf("%s:match:%s", keyPrefix, id)
}

// matchIndexKey returns the Redis key for the LIST of match record ids,
// kept in insertion order for history views
func matchIndexKey() string {
	return fmt.Sprintf("%s:idx:matches", keyPrefix)
}

// watchChannel returns the pub/sub channel carrying game document updates
func watchChannel(code model.GameCode) string {
	return fmt.Sprintf("%s:watch:%s", keyPrefix, code)
}
