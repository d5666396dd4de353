package config

import (
	"errors"
	"os"
	"strconv"
)

// Config holds everything the process needs, resolved once at startup.
type Config struct {
	Addr        string
	DatabaseURL string

	DB  DBConfig
	JWT JWTConfig

	MigrateOnStart bool
}

type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
}

type JWTConfig struct {
	Secret     string
	TTLMinutes int
}

// Load reads configuration from the environment. DATABASE_URL and JWT_SECRET
// have no defaults and must be set.
func Load() (Config, error) {
	cfg := Config{
		Addr:        ":" + getenv("PORT", "4000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DB: DBConfig{
			MaxOpenConns:    getenvInt("DB_MAX_OPEN", 25),
			MaxIdleConns:    getenvInt("DB_MAX_IDLE", 25),
			ConnMaxLifetime: getenvInt("DB_MAX_LIFETIME", 300),
		},
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			TTLMinutes: getenvInt("TOKEN_TTL_MINUTES", 30),
		},
		MigrateOnStart: getenv("MIGRATE_ON_START", "true") == "true",
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("config: DATABASE_URL is required")
	}
	if cfg.JWT.Secret == "" {
		return Config{}, errors.New("config: JWT_SECRET is required")
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
