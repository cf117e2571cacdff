package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/framecast"
)

// startStream runs a library server that sends "frame" every 10ms until the
// test ends, and returns the stream URL.
func startStream(t *testing.T) string {
	t.Helper()

	cfg, err := framecast.NewConfiguration(0, framecast.WithEndpoint("/img"))
	if err != nil {
		t.Fatalf("NewConfiguration() error = %v", err)
	}
	srv, err := framecast.New(cfg, framecast.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_, _ = srv.Send([]byte("frame"))
			}
		}
	}()

	t.Cleanup(func() {
		close(done)
		_, _ = srv.Stop()
	})
	return "http://" + srv.Addr().String() + "/img"
}

func TestRunProbe_ReadsFrames(t *testing.T) {
	url := startStream(t)

	output, err := executeCmd(t, context.Background(), "probe", url, "-n", "3", "--timeout", "5s")
	if err != nil {
		t.Fatalf("probe command error = %v", err)
	}

	expectedPhrases := []string{
		"probe ",
		"frame 1: 5 bytes (image/jpeg)",
		"frame 3: 5 bytes (image/jpeg)",
		"received 3 frames, 15 bytes",
	}
	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\nGot: %s", phrase, output)
		}
	}
}

func TestRunProbe_WrongEndpoint(t *testing.T) {
	url := startStream(t)

	_, err := executeCmd(t, context.Background(), "probe", strings.TrimSuffix(url, "/img")+"/other", "-n", "1", "--timeout", "5s")
	if err == nil {
		t.Fatal("probe command expected error for wrong endpoint, got nil")
	}
	if !strings.Contains(err.Error(), "failed to open stream") {
		t.Errorf("error = %v, want error containing 'failed to open stream'", err)
	}
}

func TestRunProbe_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero frames", []string{"probe", "http://127.0.0.1:1/", "-n", "0", "--timeout", "1s"}, "frames must be at least 1"},
		{"zero timeout", []string{"probe", "http://127.0.0.1:1/", "-n", "1", "--timeout", "0s"}, "timeout must be positive"},
		{"missing url", []string{"probe"}, "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCmd(t, context.Background(), tt.args...)
			if err == nil {
				t.Fatal("probe command expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want error containing %q", err, tt.want)
			}
		})
	}
}
