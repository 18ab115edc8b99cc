package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration, resolved from environment variables
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port int
	Env  string
}

// DatabaseConfig MySQL settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // seconds
}

// RedisConfig Redis settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// JWTConfig token settings
type JWTConfig struct {
	Secret            string
	AccessTTLMinutes  int
	RefreshTTLHours   int
}

// CORSConfig cross-origin settings
type CORSConfig struct {
	AllowOrigins string // comma-separated
}

// Load resolves configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("SERVER_PORT", 8080),
			Env:  envStr("APP_ENV", "local"),
		},
		Database: DatabaseConfig{
			Host:            envStr("DB_HOST", "localhost"),
			Port:            envInt("DB_PORT", 3306),
			User:            envStr("DB_USER", "skillswap"),
			Password:        envStr("DB_PASSWORD", ""),
			Name:            envStr("DB_NAME", "skillswap"),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: envInt("DB_CONN_MAX_LIFETIME", 3600),
		},
		Redis: RedisConfig{
			Host:     envStr("REDIS_HOST", "localhost"),
			Port:     envInt("REDIS_PORT", 6379),
			Password: envStr("REDIS_PASSWORD", ""),
			DB:       envInt("REDIS_DB", 0),
			PoolSize: envInt("REDIS_POOL_SIZE", 10),
		},
		JWT: JWTConfig{
			Secret:           envStr("JWT_SECRET", ""),
			AccessTTLMinutes: envInt("JWT_ACCESS_TTL_MINUTES", 15),
			RefreshTTLHours:  envInt("JWT_REFRESH_TTL_HOURS", 168),
		},
		CORS: CORSConfig{
			AllowOrigins: envStr("CORS_ALLOW_ORIGINS", ""),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// IsDevelopment reports whether the server runs in a development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "local" || c.Server.Env == "development" || c.Server.Env == "dev"
}

// GetDSN builds the MySQL DSN
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
