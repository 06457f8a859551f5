package model

import "time"

// UserRecord is a row of the user table as seen by the identity store.
type UserRecord struct {
	UserID    string     `json:"userId"`
	Nickname  string     `json:"userNickname"`
	Role      string     `json:"role,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// UserIdentity is the principal attached to one channel connection.
// It lives exactly as long as the connection and is never persisted.
type UserIdentity struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
}

// Identity returns the connection principal for this user.
func (u *UserRecord) Identity() *UserIdentity {
	return &UserIdentity{UserID: u.UserID, Role: u.Role}
}
