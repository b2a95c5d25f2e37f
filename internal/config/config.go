package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultJWTTTL           = "24h"
	defaultNotifyTTL        = "24h"
	defaultSlotLockTimeout  = "5s"
	defaultSlotLockRetries  = 3
	defaultSweepInterval    = "1m"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultDatabaseURL      = "agendly.db"
	defaultListenAddr       = ":8080"
	defaultPromotionDefault = "auto"
)

// Config is the process runtime configuration, loaded from the
// environment with sane local-development defaults.
type Config struct {
	AppEnv      string
	ListenAddr  string
	DatabaseURL string
	JWTSecret   string
	JWTTTL      time.Duration

	// NotifyResponseTTL bounds how long a notified waitlist entry may
	// hold its seat before the sweeper expires it.
	NotifyResponseTTL time.Duration
	SlotLockTimeout   time.Duration
	SlotLockRetries   int
	SweepInterval     time.Duration

	// DefaultPromotionPolicy applies to agendas created without an
	// explicit policy.
	DefaultPromotionPolicy string
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.ListenAddr = getEnv("LISTEN_ADDR", defaultListenAddr)
	cfg.DatabaseURL = getEnv("DATABASE_URL", defaultDatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.NotifyResponseTTL, err = parseDurationEnv("NOTIFY_RESPONSE_TTL", defaultNotifyTTL); err != nil {
		return nil, err
	}
	if cfg.SlotLockTimeout, err = parseDurationEnv("SLOT_LOCK_TIMEOUT", defaultSlotLockTimeout); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = parseDurationEnv("SWEEP_INTERVAL", defaultSweepInterval); err != nil {
		return nil, err
	}

	cfg.SlotLockRetries = defaultSlotLockRetries
	cfg.DefaultPromotionPolicy = getEnv("PROMOTION_POLICY_DEFAULT", defaultPromotionDefault)
	if cfg.DefaultPromotionPolicy != "auto" && cfg.DefaultPromotionPolicy != "manual" {
		return nil, fmt.Errorf("PROMOTION_POLICY_DEFAULT must be auto or manual, got %q", cfg.DefaultPromotionPolicy)
	}

	if cfg.AppEnv == "prod" && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in prod")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, raw)
	}
	return d, nil
}
