package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port              string
	DBPath            string
	JWTSecret         string
	JWTLifetime       time.Duration
	PasswordMinLength int
	BcryptCost        int
	LogLevel          string
	DevMode           bool
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Load reads configuration from the environment. TASKBOARD_JWT_SECRET is the
// only required variable; everything else has a working default.
func Load() (Config, error) {
	cfg := Config{
		Port:              getEnv("TASKBOARD_PORT", "8080"),
		DBPath:            getEnv("TASKBOARD_DB_PATH", "taskboard.db"),
		JWTSecret:         os.Getenv("TASKBOARD_JWT_SECRET"),
		JWTLifetime:       time.Duration(getEnvInt("TASKBOARD_JWT_LIFETIME_SECONDS", 3600)) * time.Second,
		PasswordMinLength: getEnvInt("TASKBOARD_PASSWORD_MIN_LENGTH", 8),
		BcryptCost:        getEnvInt("TASKBOARD_BCRYPT_COST", bcrypt.DefaultCost),
		LogLevel:          getEnv("TASKBOARD_LOG_LEVEL", "info"),
		DevMode:           strings.EqualFold(getEnv("TASKBOARD_ENV", "production"), "development"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("TASKBOARD_JWT_SECRET is required")
	}
	if cfg.JWTLifetime <= 0 {
		return Config{}, errors.New("TASKBOARD_JWT_LIFETIME_SECONDS must be positive")
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, errors.New("TASKBOARD_BCRYPT_COST out of range")
	}
	return cfg, nil
}
