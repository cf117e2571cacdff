package registry

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Conn is an accepted viewer connection.
type Conn struct {
	net.Conn

	// ID uniquely identifies the connection for its lifetime.
	ID string

	// RemoteAddr is the peer address captured at accept time.
	RemoteAddr string

	// ConnectedAt is when the connection was registered.
	ConnectedAt time.Time

	frames atomic.Uint64
}

// NewConn wraps c with a fresh id.
func NewConn(c net.Conn) *Conn {
	remote := ""
	if addr := c.RemoteAddr(); addr != nil {
		remote = addr.String()
	}
	return &Conn{
		Conn:        c,
		ID:          uuid.NewString(),
		RemoteAddr:  remote,
		ConnectedAt: time.Now(),
	}
}

// Delivered records one successfully written frame.
func (c *Conn) Delivered() {
	c.frames.Add(1)
}

// Frames returns the number of frames written to the connection.
func (c *Conn) Frames() uint64 {
	return c.frames.Load()
}

// Registry is a set of [Conn] keyed by id.
//
// Registry is safe for concurrent use, but membership is expected to change
// from a single goroutine.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

// New creates an empty [Registry].
func New() *Registry {
	return &Registry{
		conns: make(map[string]*Conn),
	}
}

// Add inserts c. Adding a connection whose id is already present replaces it.
func (r *Registry) Add(c *Conn) {
	r.mu.Lock()
	r.conns[c.ID] = c
	r.mu.Unlock()
}

// Remove deletes the connections with the given ids and returns the ones
// that were present. Unknown ids are ignored.
func (r *Registry) Remove(ids ...string) []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := make([]*Conn, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.conns[id]; ok {
			delete(r.conns, id)
			removed = append(removed, c)
		}
	}
	return removed
}

// Snapshot returns the current connections.
//
// The returned slice is a copy; order is not meaningful.
func (r *Registry) Snapshot() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	return conns
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Drain removes every connection and returns them.
func (r *Registry) Drain() []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := make([]*Conn, 0, len(r.conns))
	for id, c := range r.conns {
		conns = append(conns, c)
		delete(r.conns, id)
	}
	return conns
}
