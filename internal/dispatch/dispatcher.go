package dispatch

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/jpalmerr/framecast/internal/registry"
	"github.com/jpalmerr/framecast/internal/wire"
)

const (
	// DefaultWriteTimeout bounds a single frame write to one viewer.
	DefaultWriteTimeout = 5 * time.Second

	// DefaultMaxConcurrency is the number of viewers written to in parallel
	// during one broadcast pass.
	DefaultMaxConcurrency = 8
)

// Config holds the dispatcher settings.
type Config struct {
	// WriteTimeout bounds each frame write. Zero disables the deadline.
	WriteTimeout time.Duration

	// MaxConcurrency caps parallel writes per pass. Values below 1 use
	// DefaultMaxConcurrency.
	MaxConcurrency int

	// Logger receives connection and eviction events. Nil uses slog.Default().
	Logger *slog.Logger

	// OnEvent, if set, is called on the dispatcher goroutine for every
	// membership change.
	OnEvent func(Event)
}

// Dispatcher consumes a [Queue] and broadcasts frames to a [registry.Registry].
type Dispatcher struct {
	queue          *Queue
	registry       *registry.Registry
	writeTimeout   time.Duration
	maxConcurrency int
	logger         *slog.Logger
	onEvent        func(Event)
	done           chan struct{}
}

// New creates a [Dispatcher]. It does nothing until [Dispatcher.Run] is called.
func New(queue *Queue, reg *registry.Registry, cfg Config) *Dispatcher {
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Dispatcher{
		queue:          queue,
		registry:       reg,
		writeTimeout:   cfg.WriteTimeout,
		maxConcurrency: cfg.MaxConcurrency,
		logger:         cfg.Logger,
		onEvent:        cfg.OnEvent,
		done:           make(chan struct{}),
	}
}

// Run consumes commands until a [Stop] command arrives or the queue is
// closed. On return the queue is closed and every registered connection has
// been closed and removed.
//
// Run must be called at most once.
func (d *Dispatcher) Run() {
	defer close(d.done)
	defer d.shutdown()

	for {
		cmd, ok := d.queue.Pop()
		if !ok {
			d.logger.Warn("command queue closed, dispatcher exiting")
			return
		}

		switch c := cmd.(type) {
		case Stop:
			return
		case Register:
			d.register(c.Conn)
		case Frame:
			d.broadcast(c.Data)
		}
	}
}

// Done is closed when [Dispatcher.Run] has returned.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) register(c *registry.Conn) {
	d.registry.Add(c)
	d.logger.Debug("viewer registered",
		"conn_id", c.ID,
		"remote_addr", c.RemoteAddr,
		"clients", d.registry.Len(),
	)
	d.emit(EventRegistered, c)
}

// broadcast writes frame to every registered connection and evicts the
// connections whose write failed once the whole pass is done.
func (d *Dispatcher) broadcast(frame []byte) {
	conns := d.registry.Snapshot()
	if len(conns) == 0 {
		return
	}

	header := wire.FrameHeader(len(frame))

	jobs := make(chan *registry.Conn, len(conns))
	for _, c := range conns {
		jobs <- c
	}
	close(jobs)

	var (
		mu     sync.Mutex
		failed []string
		wg     sync.WaitGroup
	)

	workers := min(d.maxConcurrency, len(conns))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				if err := d.write(c, header, frame); err != nil {
					d.logger.Debug("frame write failed",
						"conn_id", c.ID,
						"remote_addr", c.RemoteAddr,
						"error", err,
					)
					mu.Lock()
					failed = append(failed, c.ID)
					mu.Unlock()
					continue
				}
				c.Delivered()
			}
		}()
	}
	wg.Wait()

	if len(failed) == 0 {
		return
	}

	for _, c := range d.registry.Remove(failed...) {
		_ = c.Close()
		d.logger.Info("viewer evicted",
			"conn_id", c.ID,
			"remote_addr", c.RemoteAddr,
			"frames", c.Frames(),
			"connected_for", time.Since(c.ConnectedAt).Round(time.Millisecond).String(),
		)
		d.emit(EventEvicted, c)
	}
}

// write sends one chunk to c in a single vectored write.
func (d *Dispatcher) write(c *registry.Conn, header, frame []byte) error {
	if d.writeTimeout > 0 {
		if err := c.SetWriteDeadline(time.Now().Add(d.writeTimeout)); err != nil {
			return err
		}
	}
	bufs := net.Buffers{header, frame}
	_, err := bufs.WriteTo(c.Conn)
	return err
}

// shutdown closes the queue and drops every connection.
func (d *Dispatcher) shutdown() {
	d.queue.Close()

	conns := d.registry.Drain()
	for _, c := range conns {
		_ = c.Close()
		d.emit(EventDropped, c)
	}
	d.logger.Debug("dispatcher stopped", "dropped_clients", len(conns))
}

func (d *Dispatcher) emit(kind EventKind, c *registry.Conn) {
	if d.onEvent == nil {
		return
	}
	d.onEvent(Event{
		Kind:       kind,
		ConnID:     c.ID,
		RemoteAddr: c.RemoteAddr,
		Frames:     c.Frames(),
		At:         time.Now(),
	})
}
