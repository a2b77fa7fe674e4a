package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Duration accepts either a Go duration string ("24h") or an integer number
// of seconds (86400) when unmarshalled from JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := parseDuration(s)
		if err != nil {
			return err
		}
		d.Duration = v
		return nil
	}

	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("duration must be a string or integer seconds: %s", string(b))
	}
	d.Duration = time.Duration(n) * time.Second
	return nil
}

// JsonConfig mirrors Config for JSON files. Only non-empty fields override
// the current values.
type JsonConfig struct {
	EndpointAddrGRPC      string   `json:"endpoint_addr_grpc"`
	DatabaseType          string   `json:"database_type"`
	DatabaseURL           string   `json:"database_url"`
	DatabaseName          string   `json:"database_name"`
	SecretKey             string   `json:"secret_key"`
	AccessTokenTTL        Duration `json:"access_token_ttl"`
	AccessTokenCookieName string   `json:"access_token_cookie_name"`
	LogLevel              string   `json:"log_level"`
}

// parseJSON overlays the JSON file at path onto config. An empty path is a no-op.
func parseJSON(config *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseType, c.DatabaseType)
	setString(&config.DatabaseURL, c.DatabaseURL)
	setString(&config.DatabaseName, c.DatabaseName)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AccessTokenCookieName, c.AccessTokenCookieName)
	setString(&config.LogLevel, c.LogLevel)
	if c.AccessTokenTTL.Duration != 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseDuration accepts "24h"-style strings or bare integer seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}
