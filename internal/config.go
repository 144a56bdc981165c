package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Session SessionConfig     `yaml:"session"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SessionConfig holds cookie-session configuration.
//
// Secret signs the session cookie so forged or truncated tokens are rejected
// before any store lookup. TTLHours bounds session lifetime; expired sessions
// are swept in the background.
type SessionConfig struct {
	CookieName string `yaml:"cookie_name"`
	Secret     string `yaml:"secret"`
	TTLHours   int    `yaml:"ttl_hours"`
}

// TTL returns the session lifetime.
func (c *SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CookieName, validation.Required),
		validation.Field(&c.Secret, validation.Required),
		validation.Field(&c.TTLHours, validation.Required, validation.Min(1)),
	)
}

// AuthConfig holds password-hashing configuration.
type AuthConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

// Validate validates the auth configuration. bcrypt rejects costs outside
// [4, 31] at hash time; the same bounds apply here so misconfiguration is
// caught at startup.
func (c *AuthConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BcryptCost, validation.Required, validation.Min(4), validation.Max(31)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./booknotes.db",
		},
		Session: SessionConfig{
			CookieName: "booknotes_session",
			Secret:     "change-me",
			TTLHours:   24,
		},
		Auth: AuthConfig{
			BcryptCost: 12,
		},
	}
}
