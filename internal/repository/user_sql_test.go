package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteUserRepo(t *testing.T) *SQLUserRepository {
	t.Helper()
	ctx := context.Background()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, EnsureUserSchema(ctx, db))

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	deleted := created.Add(24 * time.Hour)
	_, err = db.ExecContext(ctx,
		`INSERT INTO user (user_id, user_nickname, role, created_at, deleted_at) VALUES (?, ?, ?, ?, ?), (?, ?, ?, ?, ?)`,
		"u1", "rice", "USER", created, nil,
		"gone", "ghost", "USER", created, deleted,
	)
	require.NoError(t, err)

	return NewSQLUserRepository(db)
}

func TestSQLUserRepository_FindActive(t *testing.T) {
	repo := newSQLiteUserRepo(t)

	u, err := repo.FindActiveUserByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	assert.Equal(t, "rice", u.Nickname)
	assert.Equal(t, "USER", u.Role)
	assert.True(t, u.CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestSQLUserRepository_DeletedAndMissing(t *testing.T) {
	repo := newSQLiteUserRepo(t)
	ctx := context.Background()

	_, err := repo.FindActiveUserByID(ctx, "gone")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.FindActiveUserByID(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.NoError(t, repo.Ping(ctx))
}
