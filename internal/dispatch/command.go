package dispatch

import "github.com/jpalmerr/framecast/internal/registry"

// Command is an instruction consumed by the [Dispatcher].
//
// The set of commands is closed: [Stop], [Frame] and [Register].
type Command interface {
	command()
}

// Stop ends the dispatcher. Commands queued behind it are discarded.
type Stop struct{}

// Frame broadcasts Data to every registered connection.
type Frame struct {
	Data []byte
}

// Register adds an accepted connection to the registry.
type Register struct {
	Conn *registry.Conn
}

func (Stop) command()     {}
func (Frame) command()    {}
func (Register) command() {}
