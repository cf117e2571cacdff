package framecast

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/framecast/internal/dispatch"
)

// ViewerEventKind identifies what happened to a viewer.
type ViewerEventKind int

const (
	// ViewerConnected means the viewer passed the handshake and will receive
	// the next broadcast frame.
	ViewerConnected ViewerEventKind = iota + 1

	// ViewerEvicted means a frame write failed or timed out and the
	// connection was closed.
	ViewerEvicted

	// ViewerDropped means the connection was closed because the server stopped.
	ViewerDropped
)

// String returns the lowercase name of the event kind.
func (k ViewerEventKind) String() string {
	switch k {
	case ViewerConnected:
		return "connected"
	case ViewerEvicted:
		return "evicted"
	case ViewerDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// ViewerEvent describes a change in the set of connected viewers.
type ViewerEvent struct {
	// Kind is what happened.
	Kind ViewerEventKind

	// ID identifies the viewer connection for its lifetime.
	ID string

	// RemoteAddr is the viewer's network address.
	RemoteAddr string

	// Frames is the number of frames delivered to the viewer so far.
	Frames uint64

	// At is when the event occurred.
	At time.Time
}

// viewerEventFromDispatch maps a dispatcher event onto the public type.
func viewerEventFromDispatch(ev dispatch.Event) ViewerEvent {
	var kind ViewerEventKind
	switch ev.Kind {
	case dispatch.EventRegistered:
		kind = ViewerConnected
	case dispatch.EventEvicted:
		kind = ViewerEvicted
	case dispatch.EventDropped:
		kind = ViewerDropped
	}
	return ViewerEvent{
		Kind:       kind,
		ID:         ev.ConnID,
		RemoteAddr: ev.RemoteAddr,
		Frames:     ev.Frames,
		At:         ev.At,
	}
}

// eventHandler fans a dispatcher event out to the registered callbacks.
// It returns nil when no callbacks are registered.
func eventHandler(callbacks []func(ViewerEvent), logger *slog.Logger) func(dispatch.Event) {
	if len(callbacks) == 0 {
		return nil
	}
	return func(ev dispatch.Event) {
		event := viewerEventFromDispatch(ev)
		for _, cb := range callbacks {
			safeCallback(cb, event, logger)
		}
	}
}

// safeCallback invokes cb with panic recovery. A panic is logged with a
// correlation id and the stack trace; it never reaches the dispatcher.
func safeCallback(cb func(ViewerEvent), ev ViewerEvent, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("viewer callback panic",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
				"conn_id", ev.ID,
				"event", ev.Kind.String(),
			)
		}
	}()
	cb(ev)
}
