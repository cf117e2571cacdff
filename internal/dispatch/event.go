package dispatch

import "time"

// EventKind identifies a change in registry membership.
type EventKind int

const (
	// EventRegistered is emitted when a connection joins the registry.
	EventRegistered EventKind = iota + 1

	// EventEvicted is emitted when a failed write removed a connection.
	EventEvicted

	// EventDropped is emitted for every connection closed at shutdown.
	EventDropped
)

// Event describes one membership change.
type Event struct {
	Kind       EventKind
	ConnID     string
	RemoteAddr string
	Frames     uint64
	At         time.Time
}
