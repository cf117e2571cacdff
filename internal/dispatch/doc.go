// Package dispatch delivers frames to every registered viewer.
//
// This package is internal to framecast. It implements the broadcast side of
// the stream server:
//
//   - [Command]: the closed set of instructions ([Stop], [Frame], [Register])
//   - [Queue]: an unbounded FIFO of commands with a single consumer
//   - [Dispatcher]: the goroutine that consumes the queue and owns the
//     connection registry
//
// The dispatcher is the only goroutine that changes registry membership:
// the acceptor hands it new connections through [Register] commands, and
// failed writes evict connections at the end of each broadcast pass. Frames
// are written in the order they were queued. Within one pass, writes run on a
// bounded worker pool and each write is bounded by a deadline, so a slow
// viewer delays the pass by at most the write timeout.
package dispatch
