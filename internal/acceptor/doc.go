// Package acceptor runs the connection accept loop of the stream server.
//
// The loop polls the listening socket with a short accept deadline so that it
// notices a cleared running flag within one poll interval. Each accepted
// connection goes through the request handshake in [wire.Handshake]; viewers
// that asked for the stream endpoint are handed to the dispatcher, everything
// else is answered and closed.
//
// This package is internal to framecast.
package acceptor
