// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

// Package config assembles the server configuration from an optional YAML
// file, command-line flags and deployment environment variables.
package config

import (
	"net"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/logging"
)

// Default values for the serve flags.
const (
	DefaultHTTPAddr    = ":8000"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = logging.FormatJSON
	DefaultLogLevel    = "info"
)

// Config is the effective server configuration.
type Config struct {
	HTTPAddr            string `koanf:"http_addr"`
	MetricsAddr         string `koanf:"metrics_addr"`
	LogFormat           string `koanf:"log_format"`
	LogLevel            string `koanf:"log_level"`
	HonorLoginLocale    bool   `koanf:"honor_login_locale"`
	BcryptCost          int    `koanf:"bcrypt_cost"`
	MaxConcurrentHashes int64  `koanf:"max_concurrent_hashes"`
	QuestionsPath       string `koanf:"questions"`
	AutoMigrate         bool   `koanf:"auto_migrate"`
	CookieSecure        bool   `koanf:"cookie_secure"`

	Env Env `koanf:"-"`
}

// Env holds the values that deployments pass as environment variables.
type Env struct {
	BcryptSalt       string `env:"BCRYPT_SALT"`
	JWTSecret        string `env:"JWT_SECRET"`
	DatabaseURL      string `env:"DATABASE_URL"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"app"`
	QuestionsPath    string `env:"QUESTIONS_PATH"`
}

// RegisterFlags adds the serve flags with their defaults to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("http-addr", DefaultHTTPAddr, "HTTP listen address")
	fs.String("metrics-addr", DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", DefaultLogFormat, "log format (json or text)")
	fs.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.Bool("honor-login-locale", true, "issue login tokens in the locale chosen on the login page")
	fs.Int("bcrypt-cost", auth.DefaultBcryptCost, "bcrypt work factor for new password hashes")
	fs.Int64("max-concurrent-hashes", 0, "bound on concurrent bcrypt computations (0 = GOMAXPROCS)")
	fs.String("questions", "", "question bank YAML file (default: embedded bank)")
	fs.Bool("auto-migrate", true, "apply pending database migrations on startup")
	fs.Bool("cookie-secure", false, "mark the session cookie Secure")
}

// Source selects where Load reads from.
type Source struct {
	// File is an optional YAML config file.
	File string

	// Flags carries the flags added by RegisterFlags. Flags the user set
	// override the file; defaults only fill keys the file left out.
	Flags *pflag.FlagSet

	// Environ replaces the process environment when non-nil.
	Environ map[string]string
}

// Load builds a Config from src and validates it.
func Load(src Source) (*Config, error) {
	k := koanf.New(".")

	if src.File != "" {
		if err := k.Load(file.Provider(src.File), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("file", src.File).Wrap(err)
		}
	}

	if src.Flags != nil {
		provider := posflag.ProviderWithFlag(src.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			if f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(src.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("operation", "load flags").Wrap(err)
		}
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "decode config").Wrap(err)
	}

	environ, err := LoadEnv(src.Environ)
	if err != nil {
		return nil, err
	}
	cfg.Env = environ
	if cfg.QuestionsPath == "" {
		cfg.QuestionsPath = cfg.Env.QuestionsPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		HTTPAddr:         DefaultHTTPAddr,
		MetricsAddr:      DefaultMetricsAddr,
		LogFormat:        DefaultLogFormat,
		LogLevel:         DefaultLogLevel,
		HonorLoginLocale: true,
		BcryptCost:       auth.DefaultBcryptCost,
		AutoMigrate:      true,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("http-addr is required")
	}
	if c.LogFormat != logging.FormatJSON && c.LogFormat != logging.FormatText {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return oops.Code("CONFIG_INVALID").
			With("log_level", c.LogLevel).
			Errorf("log-level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return oops.Code("CONFIG_INVALID").
			With("bcrypt_cost", c.BcryptCost).
			Errorf("bcrypt-cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.MaxConcurrentHashes < 0 {
		return oops.Code("CONFIG_INVALID").Errorf("max-concurrent-hashes must not be negative")
	}
	if c.Env.BcryptSalt == "" {
		return oops.Code("CONFIG_INVALID").Errorf("BCRYPT_SALT environment variable is required")
	}
	if c.Env.JWTSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("JWT_SECRET environment variable is required")
	}
	return nil
}

// LoadEnv reads the deployment variables from environ, or from the process
// environment when environ is nil.
func LoadEnv(environ map[string]string) (Env, error) {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	var e Env
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return Env{}, oops.Code("CONFIG_INVALID").With("operation", "read environment").Wrap(err)
	}
	return e, nil
}

// DSN returns DATABASE_URL, or a URL assembled from the POSTGRES_* variables.
func (e Env) DSN() string {
	if e.DatabaseURL != "" {
		return e.DatabaseURL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(e.PostgresUser, e.PostgresPassword),
		Host:   net.JoinHostPort(e.PostgresHost, e.PostgresPort),
		Path:   "/" + e.PostgresDB,
	}
	return u.String()
}
