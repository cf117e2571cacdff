package framecast

import "errors"

var (
	// ErrBind is returned by [Server.Start] when the listening socket cannot
	// be created. The underlying network error is wrapped.
	ErrBind = errors.New("failed to bind")

	// ErrBrokenChannel is returned when a command cannot be delivered to the
	// dispatcher, which means it has already exited.
	ErrBrokenChannel = errors.New("dispatcher channel is broken")
)
