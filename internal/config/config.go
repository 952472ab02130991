package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr           string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	JWTSecret      string
	TickInterval   time.Duration
	TickQuantum    float64
	SeekTolerance  float64
	SnapshotDBPath string
	AIHistoryCap   int
	AITimeout      time.Duration
}

func Load() Config {
	return Config{
		Addr:           env("VF_SERVER_ADDR", ":8080"),
		AccessTTL:      envDuration("VF_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:     envDuration("VF_REFRESH_TTL", 14*24*time.Hour),
		JWTSecret:      env("VF_JWT_SECRET", "dev-change-me"),
		TickInterval:   envDuration("VF_TICK_INTERVAL", 100*time.Millisecond),
		TickQuantum:    envFloat("VF_TICK_QUANTUM", 0.1),
		SeekTolerance:  envFloat("VF_SEEK_TOLERANCE", 0.1),
		SnapshotDBPath: env("VF_SNAPSHOT_DB", "vibeforge.db"),
		AIHistoryCap:   envInt("VF_AI_HISTORY_CAP", 50),
		AITimeout:      envDuration("VF_AI_TIMEOUT", 2*time.Minute),
	}
}

func env(key, fallback string) string {
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
