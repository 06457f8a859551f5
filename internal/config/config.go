package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Logging  LoggingConfig
	Cache    CacheConfig
	Database DatabaseConfig
	GameDB   GameDBConfig
	JWT      JWTConfig
	Session  SessionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// AllowedOrigins lists extra browser origins allowed to open the game
	// channel, comma separated. The server's own origin is always allowed.
	AllowedOrigins []string `envconfig:"SERVER_ALLOWED_ORIGINS"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"tteoksang-game-server"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	LoginKey    string `envconfig:"LOGIN_KEY" default:""` // Admin endpoints login key
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	// Format is the log output format: "json" or "console".
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// CacheConfig holds session cache settings.
type CacheConfig struct {
	Type      string `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	KeyPrefix string `envconfig:"CACHE_KEY_PREFIX" default:"INGAMEINFO:"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// DatabaseConfig holds the user (identity) database settings.
type DatabaseConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"mysql"` // mysql or sqlite
	Path     string `envconfig:"DB_PATH" default:"./data/users.db"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	Name     string `envconfig:"DB_NAME" default:"tteoksang"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASS" default:""`
}

// GameDBConfig holds durable game state database settings.
type GameDBConfig struct {
	Type string `envconfig:"GAME_DB_TYPE" default:"sqlite"` // sqlite, mysql or postgres
	Path string `envconfig:"GAME_DB_PATH" default:"./data/game.db"`
	// MySQL / PostgreSQL settings
	Host     string `envconfig:"GAME_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"GAME_DB_PORT" default:"5432"`
	Name     string `envconfig:"GAME_DB_NAME" default:"tteoksang"`
	User     string `envconfig:"GAME_DB_USER" default:"postgres"`
	Password string `envconfig:"GAME_DB_PASS" default:""`
	SSLMode  string `envconfig:"GAME_DB_SSLMODE" default:"disable"`
}

// JWTConfig holds access token verification settings.
type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" default:""`
	Issuer string        `envconfig:"JWT_ISSUER" default:""`
	Leeway time.Duration `envconfig:"JWT_LEEWAY" default:"0s"`
}

// SessionConfig holds channel session settings.
type SessionConfig struct {
	IdentityTimeout time.Duration `envconfig:"SESSION_IDENTITY_TIMEOUT" default:"5s"`
	StoreTimeout    time.Duration `envconfig:"SESSION_STORE_TIMEOUT" default:"10s"`
	HandshakeCookie string        `envconfig:"SESSION_HANDSHAKE_COOKIE" default:"accessToken"`
}

// PostgresDSN returns the PostgreSQL connection string.
func (g *GameDBConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		g.User, g.Password, g.Host, g.Port, g.Name, g.SSLMode)
}

// MySQLDSN returns the MySQL data source name.
func (g *GameDBConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		g.User, g.Password, g.Host, g.Port, g.Name)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// DSN returns the MySQL data source name.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Validate checks configuration invariants and reports every violation at once.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, "JWT_SECRET must not be empty")
	}
	if c.JWT.Leeway < 0 {
		errs = append(errs, "JWT_LEEWAY must not be negative")
	}
	switch c.Cache.Type {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Sprintf("CACHE_TYPE must be one of [memory, redis], got %q", c.Cache.Type))
	}
	switch c.Database.Type {
	case "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("DB_TYPE must be one of [mysql, sqlite], got %q", c.Database.Type))
	}
	switch c.GameDB.Type {
	case "sqlite", "mysql", "postgres", "postgresql":
	default:
		errs = append(errs, fmt.Sprintf("GAME_DB_TYPE must be one of [sqlite, mysql, postgres], got %q", c.GameDB.Type))
	}
	if c.Session.IdentityTimeout <= 0 {
		errs = append(errs, "SESSION_IDENTITY_TIMEOUT must be positive")
	}
	if c.Session.StoreTimeout <= 0 {
		errs = append(errs, "SESSION_STORE_TIMEOUT must be positive")
	}

	if len(errs) > 0 {
		return errors.New("invalid config: " + strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
