package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tteoksang-game-server/internal/model"
)

// DefaultSessionKeyPrefix is the key prefix of in-game snapshots.
const DefaultSessionKeyPrefix = "INGAMEINFO:"

// SessionCache stores one GameSessionSnapshot per user id. Entries have no
// expiry; they are removed by the disconnect flush.
type SessionCache struct {
	cache  Cache
	prefix string
}

// NewSessionCache creates a session cache over the given backend.
func NewSessionCache(c Cache, prefix string) *SessionCache {
	if prefix == "" {
		prefix = DefaultSessionKeyPrefix
	}
	return &SessionCache{cache: c, prefix: prefix}
}

func (s *SessionCache) key(userID string) string {
	return s.prefix + userID
}

// Put stores the snapshot for userID, replacing any previous one.
func (s *SessionCache) Put(ctx context.Context, userID string, snap *model.GameSessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot for %s: %w", userID, err)
	}
	return s.cache.Set(ctx, s.key(userID), data, 0)
}

// Get returns the snapshot for userID, or ErrCacheMiss.
func (s *SessionCache) Get(ctx context.Context, userID string) (*model.GameSessionSnapshot, error) {
	data, err := s.cache.Get(ctx, s.key(userID))
	if err != nil {
		return nil, err
	}

	var snap model.GameSessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot for %s: %w", userID, err)
	}
	return &snap, nil
}

// Delete removes the snapshot for userID. Missing entries are ignored.
func (s *SessionCache) Delete(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, s.key(userID))
}

// Exists reports whether a snapshot is cached for userID.
func (s *SessionCache) Exists(ctx context.Context, userID string) (bool, error) {
	return s.cache.Exists(ctx, s.key(userID))
}

// IsMiss reports whether err is a cache miss.
func IsMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}
