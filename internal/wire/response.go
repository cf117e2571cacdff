package wire

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

const (
	// Boundary separates successive frame chunks in the stream body.
	Boundary = "basic_stream_boundary"

	// StreamContentType is the Content-Type of an accepted stream response.
	StreamContentType = "multipart/x-mixed-replace; boundary=" + Boundary

	// FrameContentType is the Content-Type of every frame chunk.
	FrameContentType = "image/jpeg"
)

var acceptResponse = []byte("HTTP/1.1 200 OK\r\n" +
	"Content-Type: " + StreamContentType + "\r\n" +
	"Connection: close\r\n" +
	"Expires: 0\r\n" +
	"Max-Age: 0\r\n" +
	"Cache-Control: no-cache, private\r\n" +
	"Accept-Range: bytes\r\n" +
	"Pragma: no-cache\r\n" +
	"\r\n")

var rejectResponse = []byte("HTTP/1.1 404 Not Found\r\n\r\n")

// WriteAccept writes the response head that opens a multipart stream.
func WriteAccept(w io.Writer) error {
	_, err := w.Write(acceptResponse)
	return err
}

// WriteReject writes a bare 404 response.
func WriteReject(w io.Writer) error {
	_, err := w.Write(rejectResponse)
	return err
}

// FrameHeader returns the chunk header that precedes a frame of size bytes.
func FrameHeader(size int) []byte {
	b := make([]byte, 0, len(Boundary)+len(FrameContentType)+48)
	b = append(b, "--"...)
	b = append(b, Boundary...)
	b = append(b, "\r\nContent-Type: "...)
	b = append(b, FrameContentType...)
	b = append(b, "\r\nContent-Length: "...)
	b = strconv.AppendInt(b, int64(size), 10)
	b = append(b, "\r\n\r\n"...)
	return b
}

// WriteFrame writes one complete chunk (header and frame bytes) to w.
func WriteFrame(w io.Writer, frame []byte) error {
	if _, err := w.Write(FrameHeader(len(frame))); err != nil {
		return err
	}
	_, err := w.Write(frame)
	return err
}

// Handshake reads a request from rw and answers it.
//
// It reports whether the request matched endpoint and the stream response was
// written. A non-matching request is answered with a 404 and reported as not
// accepted with a nil error. A request that cannot be parsed is answered with
// a 404 and its parse error is returned. Empty reads and read failures are
// returned without writing anything.
func Handshake(rw io.ReadWriter, endpoint string) (Request, bool, error) {
	req, err := ReadRequest(rw)
	if errors.Is(err, ErrMalformedRequest) {
		if werr := WriteReject(rw); werr != nil {
			return req, false, errors.Join(err, fmt.Errorf("failed to write rejection: %w", werr))
		}
		return req, false, err
	}
	if err != nil {
		return req, false, err
	}

	if !req.Matches(endpoint) {
		if err := WriteReject(rw); err != nil {
			return req, false, fmt.Errorf("failed to write rejection: %w", err)
		}
		return req, false, nil
	}

	if err := WriteAccept(rw); err != nil {
		return req, false, fmt.Errorf("failed to write stream response: %w", err)
	}
	return req, true, nil
}
