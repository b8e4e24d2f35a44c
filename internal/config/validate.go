package config

import (
	"time"

	"github.com/samber/oops"
)

const minSecretLength = 32

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	invalid := func(key string, format string, args ...any) error {
		return oops.Code("CONFIG_INVALID").With("key", key).Errorf(format, args...)
	}

	if c.Server.Addr == "" {
		return invalid("server.addr", "server.addr is required")
	}
	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.URL == "" {
			return invalid("database.url", "database.url is required for the postgres driver")
		}
	default:
		return invalid("database.driver", "database.driver must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Database.Driver)
	}
	if c.Database.ConnectAttempts < 1 {
		return invalid("database.connect_attempts", "database.connect_attempts must be at least 1")
	}
	if len(c.Auth.JWTSecret) < minSecretLength {
		return invalid("auth.jwt_secret", "auth.jwt_secret must be at least %d bytes", minSecretLength)
	}
	if c.Auth.TokenTTL < time.Second {
		return invalid("auth.token_ttl", "auth.token_ttl must be at least 1s")
	}
	switch c.Auth.Hasher {
	case "argon2id", "bcrypt":
	default:
		return invalid("auth.hasher", "auth.hasher must be argon2id or bcrypt, got %q", c.Auth.Hasher)
	}
	if c.Auth.RateLimit <= 0 || c.Auth.RateBurst < 1 {
		return invalid("auth.rate_limit", "auth.rate_limit and auth.rate_burst must be positive")
	}
	return nil
}
