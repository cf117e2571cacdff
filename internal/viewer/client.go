package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"
)

const streamMediaType = "multipart/x-mixed-replace"

var (
	// ErrUnexpectedStatus is returned when the server answers with a status
	// other than 200.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrNotAStream is returned when the response is not a multipart stream.
	ErrNotAStream = errors.New("response is not a multipart stream")
)

// Client opens MJPEG streams.
//
// Each stream holds its own connection for as long as it is open, so the
// transport keeps no idle connections.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a stream [Client].
//
// dialTimeout bounds connecting and waiting for the response head; it does
// not limit how long a stream stays open. Cancel the context passed to
// [Client.Open] to end a stream early.
func NewClient(dialTimeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				DisableKeepAlives:     true,
				DisableCompression:    true,
				ResponseHeaderTimeout: dialTimeout,
			},
		},
	}
}

// Stream is an open multipart stream.
type Stream struct {
	// Header holds the response headers.
	Header http.Header

	// Boundary is the part boundary announced by the server.
	Boundary string

	body   io.ReadCloser
	frames *FrameReader
}

// Open requests url and returns the stream once the response head has been
// validated.
func (c *Client) Open(ctx context.Context, url string) (*Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != streamMediaType || params["boundary"] == "" {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: Content-Type %q", ErrNotAStream, resp.Header.Get("Content-Type"))
	}

	return &Stream{
		Header:   resp.Header,
		Boundary: params["boundary"],
		body:     resp.Body,
		frames:   NewFrameReader(resp.Body, params["boundary"]),
	}, nil
}

// Next blocks until the next frame arrives.
func (s *Stream) Next() (Frame, error) {
	return s.frames.Next()
}

// Close ends the stream and releases its connection.
func (s *Stream) Close() error {
	return s.body.Close()
}

// Close closes any idle connections held by the client.
// Safe to call multiple times.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	c.httpClient.CloseIdleConnections()
}
