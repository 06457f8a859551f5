package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// OpenSQLite opens a SQLite database file with WAL mode and a single
// writer connection.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite connection pool settings
	db.SetMaxOpenConns(1) // SQLite only supports 1 writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Keep connection alive

	return db, nil
}

var sqliteGameInfo = gameInfoDialect{
	name: "sqlite",
	schema: []string{`
	CREATE TABLE IF NOT EXISTS game_info (
		user_id TEXT NOT NULL PRIMARY KEY,
		game_id INTEGER NOT NULL DEFAULT 0,
		gold INTEGER NOT NULL DEFAULT 0,
		warehouse_level INTEGER NOT NULL DEFAULT 1,
		vehicle_level INTEGER NOT NULL DEFAULT 1,
		broker_level INTEGER NOT NULL DEFAULT 1,
		private_event_id INTEGER NULL,
		last_play_turn INTEGER NOT NULL DEFAULT 0,
		last_connect_time DATETIME NOT NULL,
		purchase_quantity INTEGER NOT NULL DEFAULT 0,
		products BLOB NULL,
		rent_fee INTEGER NOT NULL DEFAULT 0
	)`},
	load: `
		SELECT user_id, game_id, gold, warehouse_level, vehicle_level, broker_level,
			private_event_id, last_play_turn, last_connect_time, purchase_quantity, products, rent_fee
		FROM game_info WHERE user_id = ?`,
	upsert: `
		INSERT INTO game_info (user_id, game_id, gold, warehouse_level, vehicle_level, broker_level,
			private_event_id, last_play_turn, last_connect_time, purchase_quantity, products, rent_fee)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			game_id = excluded.game_id,
			gold = excluded.gold,
			warehouse_level = excluded.warehouse_level,
			vehicle_level = excluded.vehicle_level,
			broker_level = excluded.broker_level,
			private_event_id = excluded.private_event_id,
			last_play_turn = excluded.last_play_turn,
			last_connect_time = excluded.last_connect_time,
			purchase_quantity = excluded.purchase_quantity,
			products = excluded.products,
			rent_fee = excluded.rent_fee`,
}

// NewSQLiteGameInfoRepository opens (and if needed creates) the game_info
// table in the SQLite file at dbPath.
func NewSQLiteGameInfoRepository(ctx context.Context, dbPath string) (*SQLGameInfoRepository, error) {
	db, err := OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}

	repo, err := newSQLGameInfoRepository(ctx, db, sqliteGameInfo)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	repo.writeMu = &sync.Mutex{}
	return repo, nil
}
