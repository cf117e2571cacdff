package viewer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
)

// DefaultMaxFrameSize caps the Content-Length a [FrameReader] accepts.
const DefaultMaxFrameSize = 16 << 20 // 16MB

var (
	// ErrMissingBoundary is returned when a part does not start with the
	// stream boundary.
	ErrMissingBoundary = errors.New("missing part boundary")

	// ErrBadContentLength is returned when a part has no usable Content-Length.
	ErrBadContentLength = errors.New("bad part content length")
)

// Frame is one part of a multipart stream.
type Frame struct {
	// Header holds the part headers, e.g. Content-Type.
	Header textproto.MIMEHeader

	// Data is the part body.
	Data []byte
}

// FrameReader splits a multipart/x-mixed-replace body into frames.
type FrameReader struct {
	br           *bufio.Reader
	tp           *textproto.Reader
	delim        string
	closeDelim   string
	maxFrameSize int
}

// NewFrameReader returns a [FrameReader] for parts of r separated by boundary.
func NewFrameReader(r io.Reader, boundary string) *FrameReader {
	br := bufio.NewReader(r)
	return &FrameReader{
		br:           br,
		tp:           textproto.NewReader(br),
		delim:        "--" + boundary,
		closeDelim:   "--" + boundary + "--",
		maxFrameSize: DefaultMaxFrameSize,
	}
}

// SetMaxFrameSize changes the largest Content-Length accepted.
func (fr *FrameReader) SetMaxFrameSize(n int) {
	fr.maxFrameSize = n
}

// Next reads the next frame.
//
// It returns io.EOF when the stream ends cleanly between frames, either by
// closing or with a closing boundary.
func (fr *FrameReader) Next() (Frame, error) {
	if err := fr.readBoundary(); err != nil {
		return Frame{}, err
	}

	header, err := fr.tp.ReadMIMEHeader()
	if err != nil {
		return Frame{}, fmt.Errorf("failed to read part header: %w", unexpected(err))
	}

	raw := header.Get("Content-Length")
	size, err := strconv.Atoi(raw)
	if err != nil || size < 0 {
		return Frame{}, fmt.Errorf("%w: %q", ErrBadContentLength, raw)
	}
	if size > fr.maxFrameSize {
		return Frame{}, fmt.Errorf("%w: %d exceeds limit %d", ErrBadContentLength, size, fr.maxFrameSize)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(fr.br, data); err != nil {
		return Frame{}, fmt.Errorf("failed to read part body: %w", unexpected(err))
	}

	return Frame{Header: header, Data: data}, nil
}

// readBoundary consumes blank lines up to and including the next boundary.
func (fr *FrameReader) readBoundary() error {
	for {
		line, err := fr.tp.ReadLine()
		if err != nil {
			return err
		}
		switch line {
		case "":
			continue
		case fr.delim:
			return nil
		case fr.closeDelim:
			return io.EOF
		default:
			return fmt.Errorf("%w: got %q", ErrMissingBoundary, truncate(line, 64))
		}
	}
}

// unexpected turns io.EOF inside a frame into io.ErrUnexpectedEOF.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
