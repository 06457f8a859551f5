package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tteoksang-game-server/internal/model"
)

func newSQLiteGameRepo(t *testing.T) *SQLGameInfoRepository {
	t.Helper()
	repo, err := NewSQLiteGameInfoRepository(context.Background(), filepath.Join(t.TempDir(), "game.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleRecord(userID string) *model.DurableGameRecord {
	event := 4
	return &model.DurableGameRecord{
		UserID:           userID,
		GameID:           17,
		Gold:             500,
		WarehouseLevel:   2,
		VehicleLevel:     1,
		BrokerLevel:      3,
		PrivateEventID:   &event,
		LastPlayTurn:     88,
		LastConnectTime:  time.Date(2026, 9, 30, 21, 15, 0, 0, time.UTC),
		PurchaseQuantity: 12,
		Products:         []byte{0xac, 0xed, 0x00, 0x05},
		RentFee:          300,
	}
}

func assertRecordEqual(t *testing.T, want, got *model.DurableGameRecord) {
	t.Helper()
	require.NotNil(t, got)
	assert.True(t, want.LastConnectTime.Equal(got.LastConnectTime), "last connect time: want %v got %v", want.LastConnectTime, got.LastConnectTime)
	w, g := *want, *got
	w.LastConnectTime, g.LastConnectTime = time.Time{}, time.Time{}
	assert.Equal(t, w, g)
}

func TestSQLiteGameInfo_LoadMissing(t *testing.T) {
	repo := newSQLiteGameRepo(t)

	rec, err := repo.LoadByUserID(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSQLiteGameInfo_UpsertAndLoad(t *testing.T) {
	repo := newSQLiteGameRepo(t)
	ctx := context.Background()

	want := sampleRecord("u1")
	require.NoError(t, repo.UpsertByUserID(ctx, want))

	got, err := repo.LoadByUserID(ctx, "u1")
	require.NoError(t, err)
	assertRecordEqual(t, want, got)

	// Second upsert replaces every column, including nullable ones.
	want.Gold = 750
	want.PrivateEventID = nil
	want.Products = nil
	want.LastConnectTime = want.LastConnectTime.Add(time.Hour)
	require.NoError(t, repo.UpsertByUserID(ctx, want))

	got, err = repo.LoadByUserID(ctx, "u1")
	require.NoError(t, err)
	assertRecordEqual(t, want, got)
	assert.Equal(t, "sqlite", repo.Backend())
	assert.NoError(t, repo.Ping(ctx))
}

func TestSQLiteGameInfo_UpsertRequiresUser(t *testing.T) {
	repo := newSQLiteGameRepo(t)
	assert.Error(t, repo.UpsertByUserID(context.Background(), &model.DurableGameRecord{}))
}

func TestSQLiteGameInfo_ConcurrentWriters(t *testing.T) {
	repo := newSQLiteGameRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := sampleRecord("u" + string(rune('a'+i)))
			rec.Gold = int64(i)
			assert.NoError(t, repo.UpsertByUserID(ctx, rec))
		}(i)
	}
	wg.Wait()

	got, err := repo.LoadByUserID(ctx, "uc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.Gold)
}
