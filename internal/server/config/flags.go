package config

import (
	"flag"
	"fmt"
	"io"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-t string     database type: mongo | postgres | memory
//	-d string     database URL
//	-n string     database name
//	-s string     access token HMAC secret
//	-l duration   access token lifetime (e.g., "24h")
//	-v string     log level
//
// Arguments not in this list are ignored.
func parseFlags(config *Config, args []string) error {
	args = filterArgs(args, []string{"-a", "-t", "-d", "-n", "-s", "-l", "-v"})

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseType, "t", config.DatabaseType, "database type")
	fs.StringVar(&config.DatabaseURL, "d", config.DatabaseURL, "database URL")
	fs.StringVar(&config.DatabaseName, "n", config.DatabaseName, "database name")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.AccessTokenTTL, "l", config.AccessTokenTTL, "access token ttl")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
