package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tteoksang-game-server/internal/cache"
	"tteoksang-game-server/internal/model"
)

type failingReader struct{}

func (failingReader) Get(context.Context, string) (*model.GameSessionSnapshot, error) {
	return nil, errors.New("i/o timeout")
}

func TestGameService_Info(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	sessions := cache.NewSessionCache(mem, cache.DefaultSessionKeyPrefix)
	svc := NewGameService(sessions)
	ctx := context.Background()

	_, err := svc.Info(ctx, "u1")
	require.ErrorIs(t, err, ErrNoActiveGame)

	require.NoError(t, sessions.Put(ctx, "u1", &model.GameSessionSnapshot{GameID: 3, Gold: 500, WarehouseLevel: 2}))

	snap, err := svc.Info(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), snap.Gold)
	assert.Equal(t, 2, snap.WarehouseLevel)
}

func TestGameService_InfoBackendError(t *testing.T) {
	svc := NewGameService(failingReader{})

	_, err := svc.Info(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoActiveGame)
}

func TestNewGameService_NilReader(t *testing.T) {
	assert.Nil(t, NewGameService(nil))
}
