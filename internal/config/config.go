// Package config loads service configuration from defaults, an optional YAML
// file, MUSIFY_* environment variables and command-line flags, in that order
// of precedence (flags win).
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by Load. A double
// underscore separates nested keys: MUSIFY_AUTH__JWT_SECRET sets auth.jwt_secret.
const EnvPrefix = "MUSIFY_"

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr              string        `koanf:"addr"`
	StaticDir         string        `koanf:"static_dir"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// MetricsConfig configures the Prometheus listener. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// DatabaseConfig selects and tunes the storage backend.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"`
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectAttempts int           `koanf:"connect_attempts"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// AuthConfig configures credentials and tokens.
type AuthConfig struct {
	JWTSecret  string        `koanf:"jwt_secret"`
	TokenTTL   time.Duration `koanf:"token_ttl"`
	Hasher     string        `koanf:"hasher"`
	BcryptCost int           `koanf:"bcrypt_cost"`
	RateLimit  float64       `koanf:"rate_limit"`
	RateBurst  int           `koanf:"rate_burst"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"server.addr":                ":8080",
		"server.static_dir":          "private",
		"server.read_header_timeout": "10s",
		"server.shutdown_timeout":    "15s",
		"metrics.addr":               "",
		"database.driver":            DriverPostgres,
		"database.url":               "",
		"database.max_open_conns":    10,
		"database.max_idle_conns":    5,
		"database.conn_max_lifetime": "5m",
		"database.connect_attempts":  5,
		"database.auto_migrate":      true,
		"auth.jwt_secret":            "",
		"auth.token_ttl":             "24h",
		"auth.hasher":                "argon2id",
		"auth.bcrypt_cost":           10,
		"auth.rate_limit":            5.0,
		"auth.rate_burst":            10,
		"log.level":                  "info",
		"log.format":                 "text",
	}
}

// Load layers the configuration sources and validates the result. path may
// be empty; flags may be nil. Only flags that were set on the command line
// override other sources.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "defaults").Wrap(err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "file").With("path", path).Wrap(err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "env").Wrap(err)
	}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"addr":         "server.addr",
	"static-dir":   "server.static_dir",
	"metrics-addr": "metrics.addr",
	"db-driver":    "database.driver",
	"db-url":       "database.url",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// RegisterFlags adds the flags listed in FlagKeys to fs. Their defaults are
// informational; unset flags never override other sources.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("addr", d["server.addr"].(string), "HTTP listen address")
	fs.String("static-dir", d["server.static_dir"].(string), "directory served under /private/")
	fs.String("metrics-addr", "", "Prometheus listen address (disabled when empty)")
	fs.String("db-driver", d["database.driver"].(string), "storage driver: postgres or memory")
	fs.String("db-url", "", "PostgreSQL connection URL")
	fs.String("log-level", d["log.level"].(string), "log level: debug, info, warn or error")
	fs.String("log-format", d["log.format"].(string), "log format: text, json or logfmt")
}

func flagKey(f *pflag.Flag) (string, any) {
	key, ok := FlagKeys[f.Name]
	if !ok {
		return "", nil
	}
	return key, f.Value.String()
}

// envKey maps MUSIFY_AUTH__JWT_SECRET to auth.jwt_secret.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
