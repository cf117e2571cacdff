// Package framecast provides a minimal MJPEG-over-HTTP broadcast server.
//
// A producer hands encoded JPEG frames to a [Server]; the server writes each
// frame to every connected viewer as one part of a multipart/x-mixed-replace
// response, the format browsers and most video tools render as a live
// image. Viewers whose connection fails are dropped without affecting the
// others.
//
// # Quick Start
//
// Serve frames on http://127.0.0.1:7879/img until the producer is done:
//
//	cfg, _ := framecast.NewConfiguration(7879, framecast.WithEndpoint("/img"))
//
//	err := framecast.Run(ctx, cfg, func(ctx context.Context, srv *framecast.Server) error {
//	    for {
//	        select {
//	        case <-ctx.Done():
//	            return nil
//	        case frame := <-frames:
//	            if _, err := srv.Send(frame); err != nil {
//	                return err
//	            }
//	        }
//	    }
//	})
//
// # Lifecycle
//
// [Server.Start], [Server.Stop] and [Server.Send] report with a boolean
// whether they did anything: starting a running server, stopping a stopped
// one and sending to a stopped one all return false with a nil error. Bind
// failures wrap [ErrBind]; a dispatcher that has gone away is reported as
// [ErrBrokenChannel].
//
// # Protocol
//
// Only a GET whose request target equals the configured endpoint exactly is
// accepted. Every other request receives "HTTP/1.1 404 Not Found" and is
// closed. There is no keep-alive, authentication or routing; each viewer
// holds one connection for the life of its stream.
//
// # Architecture
//
// framecast consists of several internal packages (under internal/):
//
//   - internal/wire: request parsing, response heads and frame chunk framing
//   - internal/registry: the set of connected viewers
//   - internal/dispatch: the command queue and the broadcasting dispatcher
//   - internal/acceptor: the polling accept loop and handshake
//   - internal/source: frame producers used by the command line tool
//   - internal/viewer: a stream client used by the probe command and tests
//
// The internal packages are not part of the public API and may change
// without notice.
package framecast
