package framecast

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jpalmerr/framecast/internal/acceptor"
	"github.com/jpalmerr/framecast/internal/dispatch"
)

// serverConfig holds mutable state during Server construction.
type serverConfig struct {
	logger           *slog.Logger
	writeTimeout     time.Duration
	handshakeTimeout time.Duration
	pollInterval     time.Duration
	maxConcurrency   int
	viewerCallbacks  []func(ViewerEvent)
}

func defaultServerConfig() serverConfig {
	return serverConfig{
		logger:           slog.Default(),
		writeTimeout:     dispatch.DefaultWriteTimeout,
		handshakeTimeout: acceptor.DefaultHandshakeTimeout,
		pollInterval:     acceptor.DefaultPollInterval,
		maxConcurrency:   dispatch.DefaultMaxConcurrency,
	}
}

// Option is a function that configures a [Server] during construction.
//
// Options return an error if validation fails.
//
// Built-in options: [WithLogger], [WithWriteTimeout], [WithHandshakeTimeout],
// [WithPollInterval], [WithMaxConcurrency], [WithViewerCallback].
type Option func(*serverConfig) error

// WithLogger sets a custom [slog.Logger] for the server.
//
// If not specified, [slog.Default] is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	srv, err := framecast.New(cfg, framecast.WithLogger(logger))
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *serverConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithWriteTimeout bounds how long a single frame write to one viewer may
// take. A viewer that does not drain its socket within the timeout is
// evicted. Defaults to 5 seconds.
//
// Returns an error if the duration is zero or negative.
func WithWriteTimeout(d time.Duration) Option {
	return func(cfg *serverConfig) error {
		if d <= 0 {
			return errors.New("write timeout must be positive")
		}
		cfg.writeTimeout = d
		return nil
	}
}

// WithHandshakeTimeout bounds how long a new connection may take to send its
// request. Defaults to 5 seconds.
//
// Returns an error if the duration is zero or negative.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(cfg *serverConfig) error {
		if d <= 0 {
			return errors.New("handshake timeout must be positive")
		}
		cfg.handshakeTimeout = d
		return nil
	}
}

// WithPollInterval sets the accept deadline of the connection loop, which is
// also the longest time the loop takes to notice [Server.Stop].
// Defaults to 30 milliseconds.
//
// Returns an error if the duration is zero or negative.
func WithPollInterval(d time.Duration) Option {
	return func(cfg *serverConfig) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		cfg.pollInterval = d
		return nil
	}
}

// WithMaxConcurrency sets how many viewers are written to in parallel while
// a frame is broadcast. Defaults to 8.
//
// Returns an error if the value is zero or negative.
func WithMaxConcurrency(n int) Option {
	return func(cfg *serverConfig) error {
		if n <= 0 {
			return errors.New("max concurrency must be positive")
		}
		cfg.maxConcurrency = n
		return nil
	}
}

// WithViewerCallback registers a function called whenever a viewer is
// registered, evicted after a failed write, or dropped at shutdown.
//
// Multiple callbacks may be registered; they execute in registration order.
//
// IMPORTANT: Callbacks run on the dispatcher goroutine and must not block.
// A slow callback delays every frame. Panics are recovered and logged.
//
// Example:
//
//	srv, err := framecast.New(cfg,
//	    framecast.WithViewerCallback(func(ev framecast.ViewerEvent) {
//	        if ev.Kind == framecast.ViewerEvicted {
//	            log.Printf("viewer %s gone after %d frames", ev.RemoteAddr, ev.Frames)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithViewerCallback(cb func(ViewerEvent)) Option {
	return func(cfg *serverConfig) error {
		if cb == nil {
			return nil
		}
		cfg.viewerCallbacks = append(cfg.viewerCallbacks, cb)
		return nil
	}
}
