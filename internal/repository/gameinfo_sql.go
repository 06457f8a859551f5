package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"tteoksang-game-server/internal/model"
)

// gameInfoDialect holds the statements that differ between SQL backends.
type gameInfoDialect struct {
	name   string
	schema []string
	load   string
	upsert string
}

// SQLGameInfoRepository implements GameInfoRepository on database/sql.
// Constructors exist per backend: SQLite, MySQL and PostgreSQL.
type SQLGameInfoRepository struct {
	db      *sql.DB
	dialect gameInfoDialect

	// serializes SQLite writers; nil for server databases
	writeMu *sync.Mutex
}

func newSQLGameInfoRepository(ctx context.Context, db *sql.DB, dialect gameInfoDialect) (*SQLGameInfoRepository, error) {
	for _, stmt := range dialect.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create %s game_info table: %w", dialect.name, err)
		}
	}
	return &SQLGameInfoRepository{db: db, dialect: dialect}, nil
}

// LoadByUserID returns the stored game state, or nil, nil when the user has none.
func (r *SQLGameInfoRepository) LoadByUserID(ctx context.Context, userID string) (*model.DurableGameRecord, error) {
	var (
		rec     model.DurableGameRecord
		eventID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, r.dialect.load, userID).Scan(
		&rec.UserID,
		&rec.GameID,
		&rec.Gold,
		&rec.WarehouseLevel,
		&rec.VehicleLevel,
		&rec.BrokerLevel,
		&eventID,
		&rec.LastPlayTurn,
		&rec.LastConnectTime,
		&rec.PurchaseQuantity,
		&rec.Products,
		&rec.RentFee,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load game info for %s: %w", userID, err)
	}

	if eventID.Valid {
		v := int(eventID.Int64)
		rec.PrivateEventID = &v
	}
	rec.LastConnectTime = rec.LastConnectTime.UTC()
	return &rec, nil
}

// UpsertByUserID inserts or replaces the game state of rec.UserID.
func (r *SQLGameInfoRepository) UpsertByUserID(ctx context.Context, rec *model.DurableGameRecord) error {
	if rec == nil || rec.UserID == "" {
		return errors.New("game info upsert requires a user id")
	}
	if r.writeMu != nil {
		r.writeMu.Lock()
		defer r.writeMu.Unlock()
	}

	var eventID sql.NullInt64
	if rec.PrivateEventID != nil {
		eventID = sql.NullInt64{Int64: int64(*rec.PrivateEventID), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, r.dialect.upsert,
		rec.UserID,
		rec.GameID,
		rec.Gold,
		rec.WarehouseLevel,
		rec.VehicleLevel,
		rec.BrokerLevel,
		eventID,
		rec.LastPlayTurn,
		rec.LastConnectTime.UTC(),
		rec.PurchaseQuantity,
		rec.Products,
		rec.RentFee,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game info for %s: %w", rec.UserID, err)
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLGameInfoRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Backend returns the dialect name (sqlite, mysql or postgres).
func (r *SQLGameInfoRepository) Backend() string {
	return r.dialect.name
}

// Close closes the database connection.
func (r *SQLGameInfoRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLGameInfoRepository implements GameInfoRepository
var _ GameInfoRepository = (*SQLGameInfoRepository)(nil)
