package acceptor

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/jpalmerr/framecast/internal/registry"
	"github.com/jpalmerr/framecast/internal/wire"
)

const (
	// DefaultPollInterval is the accept deadline used on each loop iteration.
	DefaultPollInterval = 30 * time.Millisecond

	// DefaultHandshakeTimeout bounds reading and answering a request.
	DefaultHandshakeTimeout = 5 * time.Second
)

// Listener is a stream listener whose Accept can be bounded by a deadline.
// *net.TCPListener and *net.UnixListener satisfy it.
type Listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// Config holds the acceptor settings.
type Config struct {
	// Endpoint is the only request target that is accepted.
	Endpoint string

	// PollInterval is the accept deadline per iteration. Values <= 0 use
	// DefaultPollInterval.
	PollInterval time.Duration

	// HandshakeTimeout bounds the request read and response write. Values
	// <= 0 use DefaultHandshakeTimeout.
	HandshakeTimeout time.Duration

	// Running is checked before every accept; the loop ends once it
	// reports false.
	Running func() bool

	// Register hands an accepted viewer to the dispatcher. An error is
	// fatal to the loop.
	Register func(*registry.Conn) error

	// Logger receives connection events. Nil uses slog.Default().
	Logger *slog.Logger
}

// Acceptor accepts and validates viewer connections.
type Acceptor struct {
	ln               Listener
	endpoint         string
	pollInterval     time.Duration
	handshakeTimeout time.Duration
	running          func() bool
	register         func(*registry.Conn) error
	logger           *slog.Logger
}

// New creates an [Acceptor] for ln. It does not take ownership of ln; the
// caller closes it after [Acceptor.Run] returns.
func New(ln Listener, cfg Config) *Acceptor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Acceptor{
		ln:               ln,
		endpoint:         cfg.Endpoint,
		pollInterval:     cfg.PollInterval,
		handshakeTimeout: cfg.HandshakeTimeout,
		running:          cfg.Running,
		register:         cfg.Register,
		logger:           cfg.Logger,
	}
}

// Run accepts connections while the running flag is set.
//
// It returns nil when the flag is cleared, or the first error that cannot be
// recovered from: a failed accept other than a deadline expiry, or a failed
// registration.
func (a *Acceptor) Run() error {
	for a.running() {
		if err := a.ln.SetDeadline(time.Now().Add(a.pollInterval)); err != nil {
			return fmt.Errorf("failed to set accept deadline: %w", err)
		}

		conn, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		if err := a.handle(conn); err != nil {
			return err
		}
	}
	return nil
}

// handle runs the handshake on conn. Only a registration failure is returned;
// every per-connection problem closes conn and is logged.
func (a *Acceptor) handle(conn net.Conn) error {
	logger := a.logger.With("remote_addr", conn.RemoteAddr().String())

	if err := conn.SetDeadline(time.Now().Add(a.handshakeTimeout)); err != nil {
		_ = conn.Close()
		logger.Debug("failed to set handshake deadline", "error", err)
		return nil
	}

	req, ok, err := wire.Handshake(conn, a.endpoint)
	if err != nil {
		_ = conn.Close()
		logger.Debug("handshake failed", "error", err)
		return nil
	}
	if !ok {
		_ = conn.Close()
		logger.Debug("request rejected", "method", req.Method, "target", req.Target)
		return nil
	}

	if err := conn.SetDeadline(time.Time{}); err != nil {
		_ = conn.Close()
		logger.Debug("failed to clear handshake deadline", "error", err)
		return nil
	}

	viewer := registry.NewConn(conn)
	if err := a.register(viewer); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to register viewer: %w", err)
	}

	logger.Info("viewer connected", "conn_id", viewer.ID, "user_agent", req.Header.Get("User-Agent"))
	return nil
}
