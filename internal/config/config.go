// Package config loads server settings.
//
// Sources, lowest precedence first:
//
//  1. envDefault tags on Config
//  2. an optional YAML file
//  3. the process environment, after a .env file (if any) has been merged
//     into it
//
// A variable set in the environment always wins. A YAML value wins over a
// default, except that a YAML false or 0 is indistinguishable from "unset"
// and falls back to the default.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sakif/trivia-league/internal/auth"
)

// DefaultFile is the YAML file Load reads when no path is given.
const DefaultFile = "config.yaml"

type Config struct {
	Port   int    `yaml:"port" env:"PORT" envDefault:"8080"`
	DBPath string `yaml:"db_path" env:"DB_PATH" envDefault:"data/trivia.db"`

	// JWTSecret enables sessions when non-empty.
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" envDefault:"24h"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" envDefault:"text"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST" envDefault:"20"`

	SMTP         SMTPConfig `yaml:"smtp"`
	SupportEmail string     `yaml:"support_email" env:"SUPPORT_EMAIL"`

	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	MetricsEnabled bool     `yaml:"metrics_enabled" env:"METRICS_ENABLED" envDefault:"true"`
}

// SMTPConfig is only used when Host is set; otherwise mail is logged.
type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" envDefault:"587"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
}

// Load builds a Config from path (DefaultFile when empty), .env and the
// environment, then validates it. Missing files are not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: loading .env: %w", err)
	}

	if path == "" {
		path = DefaultFile
	}

	var cfg Config
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{SetDefaultsForZeroValuesOnly: true}); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH must not be empty"))
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < auth.MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", auth.MinSecretLength))
	}
	if c.RateLimitRPS <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must be positive, got %v", c.RateLimitRPS))
	}
	if c.RateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", c.RateLimitBurst))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if c.SMTP.Host != "" && c.SupportEmail == "" {
		errs = append(errs, errors.New("SUPPORT_EMAIL is required when SMTP_HOST is set"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// AuthEnabled reports whether sessions are enforced.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// SlogLevel maps LogLevel onto slog. Validate has already rejected unknown
// names, so the fallback is never hit for a loaded Config.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", s)
	}
	return level, nil
}

// NewLogger builds the process logger in the configured format and level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
