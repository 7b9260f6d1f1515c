package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jotter/internal/auth"
	"github.com/starford/jotter/internal/store"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Database DatabaseConfig    `yaml:"database"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
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

// DatabaseConfig selects the SQL driver and connection string.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = store.DriverSQLite
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(store.DriverSQLite, store.DriverMySQL)),
		validation.Field(&c.DSN, validation.Required),
	)
}

// Open opens the configured store.
func (c *DatabaseConfig) Open() (*store.Store, error) {
	return store.Open(c.Driver, c.DSN)
}

// AuthConfig holds session token settings.
//
// Secret signs session tokens and must be at least 16 bytes. CookieSecure
// marks the browser session cookie Secure; enable it behind HTTPS.
type AuthConfig struct {
	Secret       string        `yaml:"secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	CookieSecure bool          `yaml:"cookie_secure"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Secret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.TokenTTL, validation.Min(time.Minute)),
	)
}

// Accounts builds the account service backed by users.
func (c *AuthConfig) Accounts(users auth.UserStore) *auth.Accounts {
	return auth.NewAccounts(users, auth.NewTokenIssuer(c.Secret, c.TokenTTL))
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
		Database: DatabaseConfig{
			Driver: store.DriverSQLite,
			DSN:    "./jotter.db",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
	}
}
