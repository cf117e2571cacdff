package wire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/textproto"
	"strings"
)

// RequestBufferSize is the maximum number of bytes read from a connection
// before its request head is parsed. Headers beyond this limit are ignored.
const RequestBufferSize = 1024

var (
	// ErrEmptyRequest is returned when the peer closed the connection
	// without sending anything.
	ErrEmptyRequest = errors.New("empty request")

	// ErrMalformedRequest is returned when the request line or a header
	// line cannot be parsed.
	ErrMalformedRequest = errors.New("malformed request")
)

var (
	headerTerminator = []byte("\r\n\r\n")
	lineTerminator   = []byte("\r\n")
)

// Request is the parsed head of an inbound request.
type Request struct {
	// Method is the request method, e.g. "GET".
	Method string

	// Target is the raw request target, including any query string.
	Target string

	// Proto is the protocol version, e.g. "HTTP/1.1".
	Proto string

	// Header holds the headers that fit in the read buffer.
	Header textproto.MIMEHeader

	// Truncated reports that the header block did not end within the
	// read buffer. The request line is still valid.
	Truncated bool
}

// Matches reports whether the request asks for the stream served at endpoint.
// Only GET requests whose target equals endpoint exactly are accepted.
func (r Request) Matches(endpoint string) bool {
	return r.Method == http.MethodGet && r.Target == endpoint
}

// ReadRequest reads a request head from r and parses it.
//
// Reading stops at the end of the header block, when [RequestBufferSize]
// bytes have been read, or when r returns an error. Callers are expected to
// bound the read with a deadline.
func ReadRequest(r io.Reader) (Request, error) {
	buf := make([]byte, RequestBufferSize)
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if bytes.Contains(buf[:n], headerTerminator) {
			break
		}
		if err != nil {
			if n > 0 && errors.Is(err, io.EOF) {
				break
			}
			if n == 0 && errors.Is(err, io.EOF) {
				return Request{}, ErrEmptyRequest
			}
			return Request{}, fmt.Errorf("failed to read request: %w", err)
		}
	}
	return ParseRequest(buf[:n])
}

// ParseRequest parses a request line and headers from data.
//
// A header block cut short by the end of data is tolerated and flagged with
// Request.Truncated: only the complete header lines are parsed and the
// request is judged on its request line. A missing or malformed request line
// is an error.
func ParseRequest(data []byte) (Request, error) {
	if len(data) == 0 {
		return Request{}, ErrEmptyRequest
	}

	truncated := !bytes.Contains(data, headerTerminator)
	if truncated {
		if i := bytes.LastIndex(data, lineTerminator); i >= 0 {
			data = data[:i+len(lineTerminator)]
		}
	}

	tp := textproto.NewReader(bufio.NewReader(bytes.NewReader(data)))

	line, err := tp.ReadLine()
	if err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	method, rest, ok := strings.Cut(line, " ")
	if !ok || method == "" {
		return Request{}, fmt.Errorf("%w: request line %q", ErrMalformedRequest, line)
	}
	target, proto, ok := strings.Cut(rest, " ")
	if !ok || target == "" {
		return Request{}, fmt.Errorf("%w: request line %q", ErrMalformedRequest, line)
	}
	if _, _, ok := http.ParseHTTPVersion(proto); !ok {
		return Request{}, fmt.Errorf("%w: unsupported protocol %q", ErrMalformedRequest, proto)
	}

	req := Request{
		Method:    method,
		Target:    target,
		Proto:     proto,
		Truncated: truncated,
	}

	header, err := tp.ReadMIMEHeader()
	switch {
	case err == nil:
	case truncated, errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		req.Truncated = true
	default:
		return Request{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	req.Header = header

	return req, nil
}
