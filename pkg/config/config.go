// ==============================================================================
// CONFIG PACKAGE - pkg/config/config.go
// ==============================================================================
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Sanctions SanctionsConfig
	Treasury  TreasuryConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type SanctionsConfig struct {
	// NameMatchThreshold is the minimum fuzzy-name similarity treated as a hit.
	NameMatchThreshold float64
	// WatchlistCacheTTL bounds how long a cached watch-list snapshot is served.
	WatchlistCacheTTL time.Duration
}

type TreasuryConfig struct {
	// InitiatingParty is rendered in the PAIN.001 group header.
	InitiatingParty string
	// DebtorAgentBIC identifies our own bank in outbound messages.
	DebtorAgentBIC string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:      normalizeRedisURL(getEnv("REDIS_URL", "localhost:6379")),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "change-this-secret"),
			Expiration: getDurationEnv("JWT_EXPIRATION", 15*time.Minute),
		},
		Sanctions: SanctionsConfig{
			NameMatchThreshold: getFloatEnv("SANCTIONS_NAME_THRESHOLD", 0.85),
			WatchlistCacheTTL:  getDurationEnv("SANCTIONS_CACHE_TTL", 10*time.Minute),
		},
		Treasury: TreasuryConfig{
			InitiatingParty: getEnv("TREASURY_INITIATING_PARTY", "NexusTreasury"),
			DebtorAgentBIC:  getEnv("TREASURY_DEBTOR_AGENT_BIC", "NEXUSGB2L"),
		},
	}
}

// ValidateCore checks the settings every service needs before start.
func (c *Config) ValidateCore() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWT.Secret == "" || c.JWT.Secret == "change-this-secret" {
		return errors.New("JWT_SECRET must be set to a non-default value")
	}
	if c.Sanctions.NameMatchThreshold <= 0 || c.Sanctions.NameMatchThreshold > 1 {
		return errors.New("SANCTIONS_NAME_THRESHOLD must be in (0, 1]")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// normalizeRedisURL strips scheme prefixes so the address works with
// go-redis Options.Addr.
func normalizeRedisURL(url string) string {
	url = strings.TrimPrefix(url, "redis://")
	url = strings.TrimPrefix(url, "rediss://")
	if idx := strings.Index(url, "@"); idx != -1 {
		url = url[idx+1:]
	}
	return url
}
