package session

import (
	"errors"

	"tteoksang-game-server/internal/auth"
)

// Errors returned by Connect and Disconnect. Match them with errors.Is.
var (
	// ErrInvalidCredential means the token was malformed, expired or forged,
	// or no credential was presented at all.
	ErrInvalidCredential = auth.ErrInvalidCredential
	// ErrUnknownUser means the credential was valid but no active user matches it.
	ErrUnknownUser = errors.New("unknown user")
	// ErrIdentityUnavailable means the identity store failed or timed out.
	ErrIdentityUnavailable = errors.New("identity store unavailable")
	// ErrStoreRead means the durable game state could not be loaded.
	ErrStoreRead = errors.New("game state load failed")
	// ErrStoreWrite means the flush-back write failed; the snapshot was dropped.
	ErrStoreWrite = errors.New("game state write failed")
	// ErrCacheUnavailable means the session cache could not be read or written.
	ErrCacheUnavailable = errors.New("session cache unavailable")
	// ErrInvalidState means the lifecycle event does not apply to the connection's state.
	ErrInvalidState = errors.New("invalid connection state")
	// ErrShuttingDown means the server no longer accepts new sessions.
	ErrShuttingDown = errors.New("server shutting down")
)

// Rejection codes reported to the client. They let a client tell
// "log in again" apart from "this account cannot play".
const (
	ReasonInvalidCredential = "INVALID_CREDENTIAL"
	ReasonUnknownUser       = "UNKNOWN_USER"
	ReasonInvalidState      = "INVALID_STATE"
	ReasonUnavailable       = "UNAVAILABLE"
)

// RejectReason maps a Connect error to its client-facing code.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredential):
		return ReasonInvalidCredential
	case errors.Is(err, ErrUnknownUser):
		return ReasonUnknownUser
	case errors.Is(err, ErrInvalidState):
		return ReasonInvalidState
	default:
		return ReasonUnavailable
	}
}
