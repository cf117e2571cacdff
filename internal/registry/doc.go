// Package registry holds the set of viewer connections that receive frames.
//
// This package is internal to framecast. A [Registry] is owned by the
// broadcast dispatcher: only the dispatcher goroutine adds or removes
// connections, while other goroutines may read its size. Every accepted
// connection is wrapped in a [Conn] carrying a generated id, the remote
// address and delivery counters used for logging.
//
// Connections are unordered. Removing a connection closes nothing; the caller
// decides when to close what [Registry.Remove] hands back.
package registry
