// Package session drives the lifecycle of a game channel connection:
// authentication on CONNECT, loading the durable game state into the
// session cache, and writing it back on DISCONNECT.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tteoksang-game-server/internal/auth"
	"tteoksang-game-server/internal/cache"
	"tteoksang-game-server/internal/model"
	"tteoksang-game-server/internal/repository"
)

// IdentityStore resolves a user id to an active user record.
type IdentityStore interface {
	FindActiveUserByID(ctx context.Context, userID string) (*model.UserRecord, error)
}

// GameStateStore holds the durable game state.
type GameStateStore interface {
	LoadByUserID(ctx context.Context, userID string) (*model.DurableGameRecord, error)
	UpsertByUserID(ctx context.Context, rec *model.DurableGameRecord) error
}

// SnapshotCache holds the live snapshot of each connected user.
// Get reports a miss with cache.ErrCacheMiss.
type SnapshotCache interface {
	Put(ctx context.Context, userID string, snap *model.GameSessionSnapshot) error
	Get(ctx context.Context, userID string) (*model.GameSessionSnapshot, error)
	Delete(ctx context.Context, userID string) error
	Exists(ctx context.Context, userID string) (bool, error)
}

// Config holds the dependencies and limits of an Interceptor.
type Config struct {
	Authenticator auth.Authenticator
	Users         IdentityStore
	Games         GameStateStore
	Cache         SnapshotCache
	Logger        *zap.Logger

	// IdentityTimeout bounds the user lookup on CONNECT. Zero means no bound.
	IdentityTimeout time.Duration
	// StoreTimeout bounds each durable store call. Zero means no bound.
	StoreTimeout time.Duration
	// Clock stamps flush-back records. Defaults to time.Now.
	Clock func() time.Time
}

// Interceptor observes CONNECT and DISCONNECT on channel connections.
// Connections are handled concurrently; events for one connection must be
// delivered in order by the transport.
type Interceptor struct {
	auth   auth.Authenticator
	users  IdentityStore
	games  GameStateStore
	cache  SnapshotCache
	logger *zap.Logger

	identityTimeout time.Duration
	storeTimeout    time.Duration
	now             func() time.Time

	mu      sync.Mutex
	live    map[string]*Conn
	closing bool
	flushes sync.WaitGroup
}

// NewInterceptor validates cfg and creates an Interceptor.
func NewInterceptor(cfg Config) (*Interceptor, error) {
	if cfg.Authenticator == nil || cfg.Users == nil || cfg.Games == nil || cfg.Cache == nil {
		return nil, errors.New("session: authenticator, users, games and cache are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Interceptor{
		auth:            cfg.Authenticator,
		users:           cfg.Users,
		games:           cfg.Games,
		cache:           cfg.Cache,
		logger:          logger.Named("session"),
		identityTimeout: cfg.IdentityTimeout,
		storeTimeout:    cfg.StoreTimeout,
		now:             clock,
		live:            make(map[string]*Conn),
	}, nil
}

// Connect authenticates conn with the CONNECT headers and loads the user's
// game into the session cache. On success conn is ACTIVE and carries the
// returned identity. On failure conn is CLOSED and no cache entry was written.
func (i *Interceptor) Connect(ctx context.Context, conn *Conn, headers map[string]string) (*model.UserIdentity, error) {
	if !conn.transition(StateUnauthenticated, StateAuthenticating) {
		return nil, fmt.Errorf("%w: connect on %s connection", ErrInvalidState, conn.State())
	}

	log := i.logger.With(zap.String("conn_id", conn.ID()))

	identity, err := i.connect(ctx, conn, headers)
	if err != nil {
		conn.fail()
		log.Warn("connect rejected", zap.String("reason", RejectReason(err)), zap.Error(err))
		return nil, err
	}

	log.Info("session active", zap.String("user_id", identity.UserID))
	return identity, nil
}

func (i *Interceptor) connect(ctx context.Context, conn *Conn, headers map[string]string) (*model.UserIdentity, error) {
	i.mu.Lock()
	closing := i.closing
	i.mu.Unlock()
	if closing {
		return nil, ErrShuttingDown
	}

	userID, err := i.auth.Authenticate(ctx, auth.Handshake{Headers: headers, Attributes: conn.attributes})
	if err != nil {
		if errors.Is(err, ErrInvalidCredential) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}

	user, err := i.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	identity := user.Identity()
	conn.attach(identity)

	rec, err := i.loadGame(ctx, userID)
	if err != nil {
		return nil, err
	}

	cached := false
	if rec != nil {
		// Last CONNECT wins: a snapshot left by another connection of the
		// same user is replaced.
		if err := i.cache.Put(ctx, userID, model.NewSnapshot(rec)); err != nil {
			return nil, fmt.Errorf("%w: put snapshot: %v", ErrCacheUnavailable, err)
		}
		cached = true
	}

	i.mu.Lock()
	if i.closing {
		i.mu.Unlock()
		if cached {
			if err := i.cache.Delete(context.WithoutCancel(ctx), userID); err != nil {
				i.logger.Error("failed to drop snapshot of rejected connection", zap.String("user_id", userID), zap.Error(err))
			}
		}
		return nil, ErrShuttingDown
	}
	conn.activate(i.now())
	i.live[conn.ID()] = conn
	i.mu.Unlock()

	return identity, nil
}

func (i *Interceptor) findUser(ctx context.Context, userID string) (*model.UserRecord, error) {
	ctx, cancel := withTimeout(ctx, i.identityTimeout)
	defer cancel()

	user, err := i.users.FindActiveUserByID(ctx, userID)
	switch {
	case err == nil && user != nil:
		return user, nil
	case err == nil, errors.Is(err, repository.ErrUserNotFound):
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	default:
		return nil, fmt.Errorf("%w: %w", ErrIdentityUnavailable, err)
	}
}

func (i *Interceptor) loadGame(ctx context.Context, userID string) (*model.DurableGameRecord, error) {
	ctx, cancel := withTimeout(ctx, i.storeTimeout)
	defer cancel()

	rec, err := i.games.LoadByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	return rec, nil
}

// Disconnect closes an ACTIVE conn and flushes its snapshot back to the
// durable store. It is a no-op for any other state, so calling it twice is
// safe. The flush ignores cancellation of ctx: buffered game state is
// written even if the client is already gone.
//
// A failed durable write returns ErrStoreWrite and an unreadable snapshot
// returns ErrCacheUnavailable; the cache entry is deleted regardless.
func (i *Interceptor) Disconnect(ctx context.Context, conn *Conn) error {
	i.mu.Lock()
	identity, wasActive := conn.close()
	if wasActive {
		delete(i.live, conn.ID())
		if identity != nil {
			i.flushes.Add(1)
		}
	}
	i.mu.Unlock()

	if !wasActive || identity == nil {
		return nil
	}
	defer i.flushes.Done()

	return i.flush(context.WithoutCancel(ctx), conn.ID(), identity.UserID)
}

func (i *Interceptor) flush(ctx context.Context, connID, userID string) error {
	log := i.logger.With(zap.String("conn_id", connID), zap.String("user_id", userID))

	snap, err := i.cache.Get(ctx, userID)
	if err != nil {
		if cache.IsMiss(err) {
			log.Debug("session closed without active game")
			return nil
		}
		// The entry must not outlive the connection, even when it cannot be
		// read back; an undecodable snapshot is lost either way.
		log.Error("failed to read snapshot for flush-back, session state dropped", zap.Error(err))
		if delErr := i.cache.Delete(ctx, userID); delErr != nil {
			log.Error("failed to delete snapshot", zap.Error(delErr))
		}
		return fmt.Errorf("%w: get snapshot: %v", ErrCacheUnavailable, err)
	}

	rec := snap.ToRecord(userID, i.now())

	wctx, cancel := withTimeout(ctx, i.storeTimeout)
	writeErr := i.games.UpsertByUserID(wctx, rec)
	cancel()

	// The entry goes even when the write failed: a stale snapshot left
	// behind would be served to the next connection of this user.
	if err := i.cache.Delete(ctx, userID); err != nil {
		log.Error("failed to delete snapshot", zap.Error(err))
	}

	if writeErr != nil {
		log.Error("flush-back failed, session state dropped",
			zap.Int64("gold", rec.Gold),
			zap.Int("last_play_turn", rec.LastPlayTurn),
			zap.Error(writeErr),
		)
		return fmt.Errorf("%w: %w", ErrStoreWrite, writeErr)
	}

	log.Info("session flushed", zap.Int("game_id", rec.GameID), zap.Int64("gold", rec.Gold))
	return nil
}

// ActiveCount returns the number of ACTIVE connections.
func (i *Interceptor) ActiveCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.live)
}

// Shutdown stops accepting new sessions, flushes every live connection and
// waits for in-flight flushes or ctx expiry.
func (i *Interceptor) Shutdown(ctx context.Context) error {
	i.mu.Lock()
	i.closing = true
	conns := make([]*Conn, 0, len(i.live))
	for _, c := range i.live {
		conns = append(conns, c)
	}
	i.mu.Unlock()

	i.logger.Info("flushing live sessions", zap.Int("count", len(conns)))

	var errs []error
	for _, c := range conns {
		if err := i.Disconnect(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}

	done := make(chan struct{})
	go func() {
		i.flushes.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("waiting for flush-back: %w", ctx.Err()))
	}
	return errors.Join(errs...)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
