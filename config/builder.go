package config

import (
	"log/slog"

	"github.com/jpalmerr/framecast"
	"github.com/jpalmerr/framecast/internal/source"
)

// BuildConfiguration converts parsed configuration into a server
// [framecast.Configuration].
func BuildConfiguration(cfg *Config) (framecast.Configuration, error) {
	return framecast.NewConfiguration(uint16(cfg.Port),
		framecast.WithAddress(cfg.Address),
		framecast.WithEndpoint(cfg.Endpoint),
	)
}

// BuildOptions converts parsed configuration into server options.
//
// Zero timeouts and concurrency are left to the server defaults.
func BuildOptions(cfg *Config, logger *slog.Logger) []framecast.Option {
	var opts []framecast.Option

	if logger != nil {
		opts = append(opts, framecast.WithLogger(logger))
	}
	if cfg.WriteTimeout > 0 {
		opts = append(opts, framecast.WithWriteTimeout(cfg.WriteTimeout.Duration()))
	}
	if cfg.HandshakeTimeout > 0 {
		opts = append(opts, framecast.WithHandshakeTimeout(cfg.HandshakeTimeout.Duration()))
	}
	if cfg.MaxConcurrency > 0 {
		opts = append(opts, framecast.WithMaxConcurrency(cfg.MaxConcurrency))
	}

	return opts
}

// BuildSource converts the source section into a [source.Config].
func BuildSource(cfg *Config) source.Config {
	return source.Config{
		Type:    cfg.Source.Type,
		Path:    cfg.Source.Path,
		Quality: cfg.Source.Quality,
		Watch:   cfg.Source.Watch,
	}
}

// LogLevel returns the slog level named by cfg.LogLevel.
func LogLevel(cfg *Config) slog.Level {
	switch cfg.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
