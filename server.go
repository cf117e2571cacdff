package framecast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/jpalmerr/framecast/internal/acceptor"
	"github.com/jpalmerr/framecast/internal/dispatch"
	"github.com/jpalmerr/framecast/internal/registry"
)

// Server streams frames to every connected viewer as multipart/x-mixed-replace.
//
// A Server is created stopped. [Server.Start] binds the configured address
// and starts two goroutines: the accept loop, which validates new
// connections, and the dispatcher, which owns the set of viewers and writes
// each frame passed to [Server.Send] to all of them. [Server.Stop] ends both
// and closes every viewer connection. A stopped Server can be started again.
//
// All methods are safe for concurrent use.
type Server struct {
	cfg    Configuration
	opts   serverConfig
	logger *slog.Logger

	// mu serializes Start, Stop and Send.
	mu      sync.Mutex
	running atomic.Bool
	queue   *dispatch.Queue
	done    chan struct{}

	// stateMu guards the fields readable while Start or Stop is in progress.
	stateMu  sync.RWMutex
	registry *registry.Registry
	addr     net.Addr
	err      error
}

// New creates a [Server] for cfg. Nothing is bound until [Server.Start].
//
// Example:
//
//	cfg, _ := framecast.NewConfiguration(7879, framecast.WithEndpoint("/img"))
//	srv, err := framecast.New(cfg,
//	    framecast.WithLogger(logger),
//	    framecast.WithWriteTimeout(2*time.Second),
//	)
//
// Returns an error if any option fails validation.
func New(cfg Configuration, opts ...Option) (*Server, error) {
	sc := defaultServerConfig()
	for _, opt := range opts {
		if err := opt(&sc); err != nil {
			return nil, err
		}
	}
	return &Server{
		cfg:    cfg,
		opts:   sc,
		logger: sc.logger,
	}, nil
}

// Start binds the listening socket and starts serving viewers.
//
// It returns false with a nil error if the server is already running; the
// socket is not rebound. A bind failure is returned wrapped in [ErrBind] and
// leaves the server stopped.
func (s *Server) Start() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return false, nil
	}

	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrBind, addr, err)
	}
	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		_ = ln.Close()
		return false, fmt.Errorf("%w %s: unexpected listener type %T", ErrBind, addr, ln)
	}

	queue := dispatch.NewQueue()
	reg := registry.New()

	d := dispatch.New(queue, reg, dispatch.Config{
		WriteTimeout:   s.opts.writeTimeout,
		MaxConcurrency: s.opts.maxConcurrency,
		Logger:         s.logger,
		OnEvent:        eventHandler(s.opts.viewerCallbacks, s.logger),
	})
	a := acceptor.New(tcpLn, acceptor.Config{
		Endpoint:         s.cfg.Endpoint(),
		PollInterval:     s.opts.pollInterval,
		HandshakeTimeout: s.opts.handshakeTimeout,
		Running:          s.running.Load,
		Register: func(c *registry.Conn) error {
			return queue.Push(dispatch.Register{Conn: c})
		},
		Logger: s.logger,
	})

	s.stateMu.Lock()
	s.registry = reg
	s.addr = ln.Addr()
	s.err = nil
	s.stateMu.Unlock()

	s.queue = queue
	s.done = make(chan struct{})
	s.running.Store(true)

	go d.Run()
	go s.supervise(a, d, queue, ln, s.done)

	s.logger.Info("stream server started",
		"addr", ln.Addr().String(),
		"endpoint", s.cfg.Endpoint(),
	)
	return true, nil
}

// supervise runs the accept loop and tears the run down once it exits,
// whether because the server is stopping or because accepting failed.
func (s *Server) supervise(a *acceptor.Acceptor, d *dispatch.Dispatcher, queue *dispatch.Queue, ln net.Listener, done chan struct{}) {
	defer close(done)

	if err := a.Run(); err != nil {
		if s.running.Load() {
			s.logger.Error("accept loop failed", "error", err)
			s.stateMu.Lock()
			s.err = err
			s.stateMu.Unlock()
		} else {
			s.logger.Debug("accept loop ended during shutdown", "error", err)
		}
	}

	// the dispatcher may already have consumed a Stop and closed the queue
	_ = queue.Push(dispatch.Stop{})
	<-d.Done()

	if err := ln.Close(); err != nil {
		s.logger.Debug("failed to close listener", "error", err)
	}
}

// Stop ends the accept loop and the dispatcher and closes every viewer
// connection. It blocks until both goroutines have exited.
//
// It returns false with a nil error if the server is not running. If the
// accept loop already failed on its own, Stop still cleans up and reports
// true; the failure is available from [Server.Err].
func (s *Server) Stop() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false, nil
	}
	if s.queue == nil || s.done == nil {
		return false, ErrBrokenChannel
	}

	s.running.Store(false)

	if err := s.queue.Push(dispatch.Stop{}); err != nil {
		s.logger.Debug("dispatcher already stopped", "error", err)
	}
	<-s.done

	s.queue = nil
	s.done = nil

	s.stateMu.Lock()
	s.registry = nil
	s.addr = nil
	s.stateMu.Unlock()

	s.logger.Info("stream server stopped")
	return true, nil
}

// Send queues frame for delivery to every connected viewer and returns
// without waiting for the writes.
//
// The frame bytes are copied, so the caller may reuse the slice. Frames are
// delivered in the order Send was called. Send returns false with a nil
// error if the server is not running, and [ErrBrokenChannel] if the
// dispatcher has exited.
func (s *Server) Send(frame []byte) (bool, error) {
	if !s.running.Load() {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false, nil
	}
	if s.queue == nil {
		return false, ErrBrokenChannel
	}

	if err := s.queue.Push(dispatch.Frame{Data: bytes.Clone(frame)}); err != nil {
		return false, fmt.Errorf("%w: %w", ErrBrokenChannel, err)
	}
	return true, nil
}

// IsRunning reports whether the server is running. The value may be stale
// by the time the caller acts on it.
func (s *Server) IsRunning() bool {
	return s.running.Load()
}

// Addr returns the bound listener address, or nil when the server is not
// running. Use it to discover the port when the configuration asked for 0.
func (s *Server) Addr() net.Addr {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.addr
}

// Clients returns the number of connected viewers.
func (s *Server) Clients() int {
	s.stateMu.RLock()
	reg := s.registry
	s.stateMu.RUnlock()

	if reg == nil {
		return 0
	}
	return reg.Len()
}

// Err returns the error that ended the accept loop of the current or most
// recent run, or nil.
func (s *Server) Err() error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.err
}

// Configuration returns the configuration the server was created with.
func (s *Server) Configuration() Configuration {
	return s.cfg
}

// Run creates and starts a server, calls fn, and stops the server before
// returning, even if fn returns an error or panics.
//
// Example:
//
//	err := framecast.Run(ctx, cfg, func(ctx context.Context, srv *framecast.Server) error {
//	    for frame := range frames {
//	        if _, err := srv.Send(frame); err != nil {
//	            return err
//	        }
//	    }
//	    return nil
//	})
//
// The returned error joins the error from fn with any error from stopping.
func Run(ctx context.Context, cfg Configuration, fn func(context.Context, *Server) error, opts ...Option) (err error) {
	srv, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	if _, err := srv.Start(); err != nil {
		return err
	}
	defer func() {
		if _, stopErr := srv.Stop(); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to stop server: %w", stopErr))
		}
	}()

	return fn(ctx, srv)
}
