package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// OpenMySQL opens a pooled MySQL connection and verifies it.
func OpenMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}
	return db, nil
}

var mysqlGameInfo = gameInfoDialect{
	name: "mysql",
	schema: []string{`
	CREATE TABLE IF NOT EXISTS game_info (
		user_id VARCHAR(64) NOT NULL PRIMARY KEY,
		game_id INT NOT NULL DEFAULT 0,
		gold BIGINT NOT NULL DEFAULT 0,
		warehouse_level INT NOT NULL DEFAULT 1,
		vehicle_level INT NOT NULL DEFAULT 1,
		broker_level INT NOT NULL DEFAULT 1,
		private_event_id INT NULL,
		last_play_turn INT NOT NULL DEFAULT 0,
		last_connect_time DATETIME(6) NOT NULL,
		purchase_quantity INT NOT NULL DEFAULT 0,
		products LONGBLOB NULL,
		rent_fee BIGINT NOT NULL DEFAULT 0
	)`},
	load: `
		SELECT user_id, game_id, gold, warehouse_level, vehicle_level, broker_level,
			private_event_id, last_play_turn, last_connect_time, purchase_quantity, products, rent_fee
		FROM game_info WHERE user_id = ?`,
	upsert: `
		INSERT INTO game_info (user_id, game_id, gold, warehouse_level, vehicle_level, broker_level,
			private_event_id, last_play_turn, last_connect_time, purchase_quantity, products, rent_fee)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			game_id = VALUES(game_id),
			gold = VALUES(gold),
			warehouse_level = VALUES(warehouse_level),
			vehicle_level = VALUES(vehicle_level),
			broker_level = VALUES(broker_level),
			private_event_id = VALUES(private_event_id),
			last_play_turn = VALUES(last_play_turn),
			last_connect_time = VALUES(last_connect_time),
			purchase_quantity = VALUES(purchase_quantity),
			products = VALUES(products),
			rent_fee = VALUES(rent_fee)`,
}

// NewMySQLGameInfoRepository connects to MySQL and prepares the game_info table.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLGameInfoRepository(ctx context.Context, dsn string) (*SQLGameInfoRepository, error) {
	db, err := OpenMySQL(ctx, dsn)
	if err != nil {
		return nil, err
	}

	repo, err := newSQLGameInfoRepository(ctx, db, mysqlGameInfo)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}
