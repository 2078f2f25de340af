package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"eventhub-backend/internal/kv"
)

// Config is everything the server reads from the environment.
type Config struct {
	Port      string
	GinMode   string
	JWTSecret string

	StoreBackend string // memory, sqlite or postgres
	SQLitePath   string
	Postgres     kv.PostgresConfig

	PaymentDelay    time.Duration
	EnforceCapacity bool
	SeedDemoData    bool
}

var AppConfig = defaultConfig()

func defaultConfig() Config {
	return Config{
		Port:         "8080",
		GinMode:      "debug",
		JWTSecret:    "defaultsecret",
		StoreBackend: "sqlite",
		SQLitePath:   "eventhub.db",
		PaymentDelay: 2 * time.Second,
		SeedDemoData: true,
	}
}

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using system environment variables")
	}
}

// LoadConfig overlays the environment on the defaults.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	setString(&cfg.Port, "PORT")
	setString(&cfg.GinMode, "GIN_MODE")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.StoreBackend, "STORE_BACKEND")
	setString(&cfg.SQLitePath, "SQLITE_PATH")

	cfg.Postgres = kv.PostgresConfig{
		Host:     os.Getenv("DB_HOST"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASS"),
		Name:     os.Getenv("DB_NAME"),
		Port:     os.Getenv("DB_PORT"),
	}

	if v := os.Getenv("PAYMENT_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return cfg, fmt.Errorf("PAYMENT_DELAY: invalid duration %q", v)
		}
		cfg.PaymentDelay = d
	}
	var err error
	if cfg.EnforceCapacity, err = envBool("ENFORCE_CAPACITY", cfg.EnforceCapacity); err != nil {
		return cfg, err
	}
	if cfg.SeedDemoData, err = envBool("SEED_DEMO_DATA", cfg.SeedDemoData); err != nil {
		return cfg, err
	}

	switch cfg.StoreBackend {
	case "memory", "sqlite":
	case "postgres":
		p := cfg.Postgres
		if p.Host == "" || p.User == "" || p.Password == "" || p.Name == "" || p.Port == "" {
			return cfg, fmt.Errorf("postgres backend needs DB_HOST, DB_USER, DB_PASS, DB_NAME and DB_PORT")
		}
	default:
		return cfg, fmt.Errorf("STORE_BACKEND: unknown backend %q", cfg.StoreBackend)
	}
	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
