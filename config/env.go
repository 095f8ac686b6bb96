package config

import (
	"fmt"
	"time"
)

// parseEnv накладывает переменные окружения LOCO_*.
func parseEnv(config *Config, getenv func(string) string) error {
	if getenv == nil {
		return nil
	}
	strs := map[string]*string{
		"LOCO_HTTP_ADDR":       &config.HTTPAddr,
		"LOCO_DATABASE_DRIVER": &config.DatabaseDriver,
		"LOCO_DATABASE_DSN":    &config.DatabaseDSN,
		"LOCO_SECRET_KEY":      &config.SecretKey,
		"LOCO_LOG_LEVEL":       &config.LogLevel,
	}
	for key, dst := range strs {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	durations := map[string]*time.Duration{
		"LOCO_TOKEN_VALIDITY":  &config.TokenValidity,
		"LOCO_CACHE_TTL":       &config.CacheTTL,
		"LOCO_REQUEST_TIMEOUT": &config.RequestTimeout,
	}
	for key, dst := range durations {
		v := getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}
	return nil
}
