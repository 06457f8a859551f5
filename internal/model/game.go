package model

import "time"

// GameSessionSnapshot is the cache-resident working copy of a player's game
// while the player is connected. Products is an opaque inventory payload.
type GameSessionSnapshot struct {
	GameID           int       `json:"gameId"`
	Gold             int64     `json:"gold"`
	WarehouseLevel   int       `json:"warehouseLevel"`
	VehicleLevel     int       `json:"vehicleLevel"`
	BrokerLevel      int       `json:"brokerLevel"`
	PrivateEventID   *int      `json:"privateEventId,omitempty"`
	LastPlayTurn     int       `json:"lastPlayTurn"`
	LastConnectTime  time.Time `json:"lastConnectTime"`
	PurchaseQuantity int       `json:"purchaseQuantity"`
	Products         []byte    `json:"products,omitempty"`
	RentFee          int64     `json:"rentFee"`
}

// DurableGameRecord is the persisted game state of one user.
type DurableGameRecord struct {
	UserID           string
	GameID           int
	Gold             int64
	WarehouseLevel   int
	VehicleLevel     int
	BrokerLevel      int
	PrivateEventID   *int
	LastPlayTurn     int
	LastConnectTime  time.Time
	PurchaseQuantity int
	Products         []byte
	RentFee          int64
}

// NewSnapshot builds the session snapshot for a loaded record.
func NewSnapshot(rec *DurableGameRecord) *GameSessionSnapshot {
	return &GameSessionSnapshot{
		GameID:           rec.GameID,
		Gold:             rec.Gold,
		WarehouseLevel:   rec.WarehouseLevel,
		VehicleLevel:     rec.VehicleLevel,
		BrokerLevel:      rec.BrokerLevel,
		PrivateEventID:   copyIntPtr(rec.PrivateEventID),
		LastPlayTurn:     rec.LastPlayTurn,
		LastConnectTime:  rec.LastConnectTime,
		PurchaseQuantity: rec.PurchaseQuantity,
		Products:         copyBytes(rec.Products),
		RentFee:          rec.RentFee,
	}
}

// ToRecord converts the snapshot back into a durable record for userID,
// stamped with the flush time.
func (s *GameSessionSnapshot) ToRecord(userID string, now time.Time) *DurableGameRecord {
	return &DurableGameRecord{
		UserID:           userID,
		GameID:           s.GameID,
		Gold:             s.Gold,
		WarehouseLevel:   s.WarehouseLevel,
		VehicleLevel:     s.VehicleLevel,
		BrokerLevel:      s.BrokerLevel,
		PrivateEventID:   copyIntPtr(s.PrivateEventID),
		LastPlayTurn:     s.LastPlayTurn,
		LastConnectTime:  now,
		PurchaseQuantity: s.PurchaseQuantity,
		Products:         copyBytes(s.Products),
		RentFee:          s.RentFee,
	}
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
