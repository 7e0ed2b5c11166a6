package config

import (
	"fmt"
	"os"
	"time"

	"github.com/arnold/stakegoals-api/internal/rewards"
)

type Config struct {
	DatabaseURL       string
	JWTSecret         string
	Port              string
	FCMServiceAccount string
	OTLPEndpoint      string
	ServiceName       string
	Policy            rewards.Policy
	VerifyDelay       time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", "stakegoals.db"),
		JWTSecret:         getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		Port:              getEnv("PORT", "8080"),
		FCMServiceAccount: getEnv("FCM_SERVICE_ACCOUNT", ""),
		OTLPEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:       getEnv("SERVICE_NAME", "stakegoals-api"),
	}

	policy, err := rewards.ParsePolicy(getEnv("REDISTRIBUTION_POLICY", ""))
	if err != nil {
		return nil, fmt.Errorf("REDISTRIBUTION_POLICY: %w", err)
	}
	cfg.Policy = policy

	delay, err := time.ParseDuration(getEnv("VERIFY_DELAY", "0s"))
	if err != nil {
		return nil, fmt.Errorf("VERIFY_DELAY: %w", err)
	}
	if delay < 0 {
		return nil, fmt.Errorf("VERIFY_DELAY: must not be negative, got %s", delay)
	}
	cfg.VerifyDelay = delay

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
