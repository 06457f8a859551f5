package service

import (
	"context"
	"errors"
	"fmt"

	"tteoksang-game-server/internal/cache"
	"tteoksang-game-server/internal/model"
)

// ErrNoActiveGame is returned when the user has no live snapshot.
var ErrNoActiveGame = errors.New("no active game")

// SnapshotReader reads the live snapshot of a connected user.
type SnapshotReader interface {
	Get(ctx context.Context, userID string) (*model.GameSessionSnapshot, error)
}

// GameService is the read side of the session cache used by gameplay handlers.
type GameService struct {
	snapshots SnapshotReader
}

// NewGameService creates a new game service.
// Returns nil if snapshots is nil (required dependency).
func NewGameService(snapshots SnapshotReader) *GameService {
	if snapshots == nil {
		return nil
	}
	return &GameService{snapshots: snapshots}
}

// Info returns the live snapshot of userID.
// A cache miss means the user has no active game.
func (s *GameService) Info(ctx context.Context, userID string) (*model.GameSessionSnapshot, error) {
	snap, err := s.snapshots.Get(ctx, userID)
	if err != nil {
		if cache.IsMiss(err) {
			return nil, ErrNoActiveGame
		}
		return nil, fmt.Errorf("reading game info: %w", err)
	}
	return snap, nil
}
