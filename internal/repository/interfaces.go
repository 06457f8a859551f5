package repository

import (
	"context"
	"errors"

	"tteoksang-game-server/internal/model"
)

// ErrUserNotFound is returned when no active (non-deleted) user matches.
var ErrUserNotFound = errors.New("user not found")

// UserRepository resolves user ids to user records. It is read-only.
type UserRepository interface {
	// FindActiveUserByID returns the user unless it is missing or soft-deleted.
	FindActiveUserByID(ctx context.Context, userID string) (*model.UserRecord, error)

	// Ping checks the database connection.
	Ping(ctx context.Context) error
}

// GameInfoRepository holds the durable game state, one row per user.
type GameInfoRepository interface {
	// LoadByUserID returns the stored game state, or nil, nil when the user has none.
	LoadByUserID(ctx context.Context, userID string) (*model.DurableGameRecord, error)

	// UpsertByUserID inserts or replaces the game state of rec.UserID.
	UpsertByUserID(ctx context.Context, rec *model.DurableGameRecord) error

	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// Close closes the repository connection.
	Close() error
}
