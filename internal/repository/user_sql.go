package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tteoksang-game-server/internal/model"
)

// SQLUserRepository implements UserRepository over the shared user table.
// Queries use "?" placeholders and run on both MySQL and SQLite.
type SQLUserRepository struct {
	db *sql.DB
}

// NewSQLUserRepository creates a user repository on an open database.
func NewSQLUserRepository(db *sql.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

// EnsureUserSchema creates the user table if it does not exist. Only the
// SQLite development setup relies on it; production owns its schema.
func EnsureUserSchema(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS user (
		user_id VARCHAR(64) NOT NULL PRIMARY KEY,
		user_nickname VARCHAR(64) NOT NULL DEFAULT '',
		role VARCHAR(32) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		deleted_at DATETIME NULL
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

// FindActiveUserByID finds the user by id, ignoring soft-deleted rows.
func (r *SQLUserRepository) FindActiveUserByID(ctx context.Context, userID string) (*model.UserRecord, error) {
	query := `SELECT user_id, user_nickname, role, created_at FROM user WHERE user_id = ? AND deleted_at IS NULL LIMIT 1`

	var u model.UserRecord
	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&u.UserID, &u.Nickname, &u.Role, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = createdAt.UTC()

	return &u, nil
}

// Ping checks the database connection.
func (r *SQLUserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Ensure SQLUserRepository implements UserRepository
var _ UserRepository = (*SQLUserRepository)(nil)
