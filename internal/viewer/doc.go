// Package viewer reads MJPEG streams over HTTP.
//
// [Client] opens a stream with a plain GET and checks that the response is a
// multipart/x-mixed-replace body; [FrameReader] then splits the body into
// frames by their Content-Length. Parts are not required to end with a CRLF
// before the next boundary, which is why the reader does not use
// mime/multipart.
//
// The package is used by the framecast probe command and by end-to-end tests.
package viewer
