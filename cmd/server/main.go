package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"tteoksang-game-server/internal/auth"
	"tteoksang-game-server/internal/cache"
	"tteoksang-game-server/internal/channel"
	"tteoksang-game-server/internal/config"
	"tteoksang-game-server/internal/handler"
	"tteoksang-game-server/internal/logging"
	"tteoksang-game-server/internal/middleware"
	"tteoksang-game-server/internal/repository"
	"tteoksang-game-server/internal/router"
	"tteoksang-game-server/internal/service"
	"tteoksang-game-server/internal/session"
)

func main() {
	cfg := config.MustLoad()

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting game server",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Environment),
	)
	ctx := context.Background()

	// Identity store
	userDB, err := openUserDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer userDB.Close()
	users := repository.NewSQLUserRepository(userDB)
	logger.Info("identity store initialized", zap.String("type", cfg.Database.Type))

	// Durable game store
	games, err := openGameRepository(ctx, cfg.GameDB)
	if err != nil {
		return err
	}
	defer games.Close()
	logger.Info("game store initialized", zap.String("type", games.Backend()))

	// Session cache
	var backend cache.Cache
	var cacheCheck handler.CheckFunc
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			return err
		}
		backend = redisCache
		cacheCheck = redisCache.Ping
	default:
		backend = cache.NewMemoryCache()
		cacheCheck = func(context.Context) error { return nil }
	}
	defer backend.Close()
	snapshots := cache.NewSessionCache(backend, cfg.Cache.KeyPrefix)
	logger.Info("session cache initialized", zap.String("type", cfg.Cache.Type), zap.String("prefix", cfg.Cache.KeyPrefix))

	verifier, err := auth.NewJWTVerifier(auth.Config{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		Leeway: cfg.JWT.Leeway,
	})
	if err != nil {
		return fmt.Errorf("creating token verifier: %w", err)
	}

	interceptor, err := session.NewInterceptor(session.Config{
		Authenticator:   auth.NewAuthenticator(verifier),
		Users:           users,
		Games:           games,
		Cache:           snapshots,
		Logger:          logger,
		IdentityTimeout: cfg.Session.IdentityTimeout,
		StoreTimeout:    cfg.Session.StoreTimeout,
	})
	if err != nil {
		return err
	}

	gameService := service.NewGameService(snapshots)

	r := router.New(router.Config{
		Handler: handler.New(cfg.App.Version,
			handler.NamedCheck{Name: "cache", Check: cacheCheck},
			handler.NamedCheck{Name: "identity_db", Check: users.Ping},
			handler.NamedCheck{Name: "game_db", Check: games.Ping},
		),
		AdminHandler: handler.NewAdminHandler(interceptor, cfg.Cache.Type, games.Backend()),
		Channel:      channel.NewHandler(interceptor, gameService, logger, cfg.Server.AllowedOrigins...),
		HandshakeMiddleware: middleware.NewHandshakeMiddleware(middleware.HandshakeConfig{
			Verifier:   verifier,
			CookieName: cfg.Session.HandshakeCookie,
			Logger:     logger,
		}),
		LoginKey: cfg.App.LoginKey,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Address()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	// Hijacked channel connections are not tracked by the HTTP server; write
	// every live session back before the stores close.
	if err := interceptor.Shutdown(shutdownCtx); err != nil {
		logger.Error("session flush-back incomplete", zap.Error(err))
	}

	logger.Info("server stopped")
	return nil
}

func openUserDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Type {
	case "sqlite":
		db, err := repository.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := repository.EnsureUserSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating user schema: %w", err)
		}
		return db, nil
	default:
		return repository.OpenMySQL(ctx, cfg.DSN())
	}
}

func openGameRepository(ctx context.Context, cfg config.GameDBConfig) (*repository.SQLGameInfoRepository, error) {
	switch cfg.Type {
	case "postgres", "postgresql":
		return repository.NewPostgresGameInfoRepository(ctx, cfg.PostgresDSN())
	case "mysql":
		return repository.NewMySQLGameInfoRepository(ctx, cfg.MySQLDSN())
	default:
		return repository.NewSQLiteGameInfoRepository(ctx, cfg.Path)
	}
}
