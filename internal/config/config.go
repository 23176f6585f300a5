package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"moodwall/internal/crypto"
)

type Config struct {
	Env            string
	Port           string
	DatabaseURL    string
	DBMaxOpenConns int
	JWTSecret      []byte
	TokenTTL       time.Duration
	EncryptionKey  []byte
	BlindIndexKey  []byte
	CORSOrigins    []string
	Location       *time.Location
}

func (c Config) Development() bool { return c.Env == "development" }

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Env:         getenv("APP_ENV", "production"),
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "*")),
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	cfg.JWTSecret = []byte(secret)

	var err error
	if cfg.EncryptionKey, err = requiredKey("ENCRYPTION_KEY"); err != nil {
		return Config{}, err
	}
	if cfg.BlindIndexKey, err = requiredKey("BLIND_INDEX_KEY"); err != nil {
		return Config{}, err
	}

	if cfg.TokenTTL, err = time.ParseDuration(getenv("TOKEN_TTL", "720h")); err != nil {
		return Config{}, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	if cfg.DBMaxOpenConns, err = strconv.Atoi(getenv("DB_MAX_OPEN_CONNS", "10")); err != nil {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.Location, err = time.LoadLocation(getenv("TIMEZONE", "UTC")); err != nil {
		return Config{}, fmt.Errorf("TIMEZONE: %w", err)
	}
	return cfg, nil
}

func requiredKey(name string) ([]byte, error) {
	v := os.Getenv(name)
	if v == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	key, err := crypto.DecodeKey(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return key, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}
