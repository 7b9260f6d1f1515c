package internal

import "log/slog"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config     *Config
	configPath string
	level      *slog.LevelVar
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithConfigPath enables live reload of the file cfg was loaded from.
// Only the log level is applied without a restart.
func WithConfigPath(path string) Option {
	return func(a *application) {
		a.configPath = path
	}
}

// WithLevelVar shares the log level with the caller, which may already
// have installed a logger using it.
func WithLevelVar(level *slog.LevelVar) Option {
	return func(a *application) {
		a.level = level
	}
}
