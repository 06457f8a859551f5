package session

import (
	"sync"
	"time"

	"tteoksang-game-server/internal/model"
)

// State is the lifecycle position of one channel connection.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "UNAUTHENTICATED"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateActive:
		return "ACTIVE"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Conn is the server-side view of one channel connection. Attributes are
// the values stored during the HTTP upgrade. Conn is safe for concurrent use.
type Conn struct {
	id         string
	attributes map[string]string

	mu          sync.Mutex
	state       State
	identity    *model.UserIdentity
	connectedAt time.Time
}

// NewConn creates an unauthenticated connection.
func NewConn(id string, attributes map[string]string) *Conn {
	attrs := make(map[string]string, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}
	return &Conn{id: id, attributes: attrs, state: StateUnauthenticated}
}

// ID returns the connection id.
func (c *Conn) ID() string {
	return c.id
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Identity returns the principal attached at CONNECT, or nil.
func (c *Conn) Identity() *model.UserIdentity {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return nil
	}
	id := *c.identity
	return &id
}

// ConnectedAt returns when the connection became active.
func (c *Conn) ConnectedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectedAt
}

func (c *Conn) transition(from, to State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != from {
		return false
	}
	c.state = to
	return true
}

func (c *Conn) attach(identity *model.UserIdentity) {
	c.mu.Lock()
	c.identity = identity
	c.mu.Unlock()
}

func (c *Conn) activate(now time.Time) {
	c.mu.Lock()
	c.state = StateActive
	c.connectedAt = now
	c.mu.Unlock()
}

// fail rejects the connection: CLOSED with no identity.
func (c *Conn) fail() {
	c.mu.Lock()
	c.state = StateClosed
	c.identity = nil
	c.mu.Unlock()
}

// close moves an ACTIVE connection to CLOSED and hands back its identity.
// It reports false if the connection was not ACTIVE, which makes a second
// close a no-op.
func (c *Conn) close() (*model.UserIdentity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive {
		return nil, false
	}
	c.state = StateClosed
	identity := c.identity
	c.identity = nil
	return identity, true
}
