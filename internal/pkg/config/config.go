package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Lock backends.
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	StartingBalance int64         `env:"STARTING_BALANCE, default=500"`
	TokenTTL        time.Duration `env:"TOKEN_TTL,        default=24h"`

	Admin AdminConfig
	Rooms RoomConfig
	Lock  LockConfig
	Mongo MongoConfig
	Redis RedisConfig
}

// AdminConfig seeds the bootstrap admin account at startup. Registration
// only ever creates players.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME"`
	Password string `env:"ADMIN_PASSWORD"`
}

type RoomConfig struct {
	DefaultMaxPlayers int `env:"ROOM_DEFAULT_MAX_PLAYERS, default=4"`
}

// LockConfig selects where per-key locks live. The redis backend is needed
// once more than one instance serves the same database.
type LockConfig struct {
	Backend     string        `env:"LOCK_BACKEND,      default=memory"`
	Timeout     time.Duration `env:"LOCK_TIMEOUT,      default=3s"`
	HoldTimeout time.Duration `env:"LOCK_HOLD_TIMEOUT, default=10s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=roomhub"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IsDevelopment reports whether human-friendly logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if (c.Admin.Username == "") != (c.Admin.Password == "") {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together"))
	}
	if c.StartingBalance < 0 {
		errs = append(errs, errors.New("STARTING_BALANCE must not be negative"))
	}
	if c.Rooms.DefaultMaxPlayers <= 0 {
		errs = append(errs, errors.New("ROOM_DEFAULT_MAX_PLAYERS must be positive"))
	}
	if c.Lock.Backend != LockBackendMemory && c.Lock.Backend != LockBackendRedis {
		errs = append(errs, fmt.Errorf("LOCK_BACKEND %q must be %q or %q", c.Lock.Backend, LockBackendMemory, LockBackendRedis))
	}
	if c.Lock.Timeout <= 0 || c.Lock.HoldTimeout <= 0 {
		errs = append(errs, errors.New("LOCK_TIMEOUT and LOCK_HOLD_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
