package viewer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_OpenReadsFrames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame_boundary")
		w.WriteHeader(http.StatusOK)
		for _, body := range []string{"one", "two"} {
			_, _ = io.WriteString(w, "--frame_boundary\r\nContent-Type: image/jpeg\r\nContent-Length: 3\r\n\r\n"+body)
			w.(http.Flusher).Flush()
		}
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)
	defer client.Close()

	stream, err := client.Open(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = stream.Close() }()

	if stream.Boundary != "frame_boundary" {
		t.Errorf("Boundary = %q, want frame_boundary", stream.Boundary)
	}

	for _, want := range []string{"one", "two"} {
		f, err := stream.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if string(f.Data) != want {
			t.Errorf("Data = %q, want %q", f.Data, want)
		}
	}

	if _, err := stream.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after last frame error = %v, want io.EOF", err)
	}
}

func TestClient_OpenRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewClient(5*time.Second).Open(context.Background(), server.URL)
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("Open() error = %v, want ErrUnexpectedStatus", err)
	}
}

func TestClient_OpenRejectsNonStream(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
	}{
		{"plain text", "text/plain"},
		{"multipart without boundary", "multipart/x-mixed-replace"},
		{"other multipart", "multipart/form-data; boundary=x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = io.WriteString(w, "hello")
			}))
			defer server.Close()

			_, err := NewClient(5*time.Second).Open(context.Background(), server.URL)
			if !errors.Is(err, ErrNotAStream) {
				t.Errorf("Open() error = %v, want ErrNotAStream", err)
			}
		})
	}
}

func TestClient_OpenHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(5*time.Second).Open(ctx, "http://127.0.0.1:1/")
	if err == nil {
		t.Error("Open() with cancelled context error = nil")
	}
}

// TestClient_Close verifies that Close() is safe to call and idempotent.
func TestClient_Close(t *testing.T) {
	client := NewClient(time.Second)

	// should not panic
	client.Close()
	client.Close()

	var nilClient *Client
	nilClient.Close()
}
