package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// loadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays environment variables onto config.
//
//	GRPC_ADDRESS, DATABASE_TYPE, DATABASE_URL, DATABASE_NAME,
//	ACCESS_TOKEN_SECRET, ACCESS_TOKEN_TTL, ACCESS_TOKEN_COOKIE_NAME, LOG_LEVEL
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"GRPC_ADDRESS", &config.EndpointAddrGRPC},
		{"DATABASE_TYPE", &config.DatabaseType},
		{"DATABASE_URL", &config.DatabaseURL},
		{"DATABASE_NAME", &config.DatabaseName},
		{"ACCESS_TOKEN_SECRET", &config.SecretKey},
		{"ACCESS_TOKEN_COOKIE_NAME", &config.AccessTokenCookieName},
		{"LOG_LEVEL", &config.LogLevel},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok {
			*s.dst = v
		}
	}

	if v, ok := lookup("ACCESS_TOKEN_TTL"); ok {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("ACCESS_TOKEN_TTL: %w", err)
		}
		config.AccessTokenTTL = d
	}
	return nil
}
