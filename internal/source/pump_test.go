package source

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingSource struct {
	n   atomic.Int32
	err error
}

func (s *countingSource) Next(context.Context) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	n := s.n.Add(1)
	return []byte{byte(n)}, nil
}

func (s *countingSource) Close() error { return nil }

func TestPump_PacesFrames(t *testing.T) {
	src := &countingSource{}
	var sent atomic.Int32

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := Pump(ctx, src, 20, func(frame []byte) (bool, error) {
		sent.Add(1)
		return true, nil
	}, testLogger())
	if err != nil {
		t.Fatalf("Pump() error = %v", err)
	}

	// 20 fps for 300ms is about 7 frames including the initial burst
	if got := sent.Load(); got < 3 || got > 12 {
		t.Errorf("sent %d frames, want roughly 7", got)
	}
}

func TestPump_StopsWhenReceiverStops(t *testing.T) {
	src := &countingSource{}
	var sent atomic.Int32

	err := Pump(context.Background(), src, 1000, func(frame []byte) (bool, error) {
		return sent.Add(1) < 5, nil
	}, testLogger())
	if err != nil {
		t.Fatalf("Pump() error = %v", err)
	}
	if sent.Load() != 5 {
		t.Errorf("send called %d times, want 5", sent.Load())
	}
}

func TestPump_Errors(t *testing.T) {
	errSource := errors.New("camera unplugged")
	errSend := errors.New("broken pipe")

	tests := []struct {
		name string
		src  Source
		send SendFunc
		want error
	}{
		{
			name: "source error",
			src:  &countingSource{err: errSource},
			send: func([]byte) (bool, error) { return true, nil },
			want: errSource,
		},
		{
			name: "send error",
			src:  &countingSource{},
			send: func([]byte) (bool, error) { return false, errSend },
			want: errSend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Pump(context.Background(), tt.src, 1000, tt.send, testLogger())
			if !errors.Is(err, tt.want) {
				t.Errorf("Pump() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPump_InvalidFPS(t *testing.T) {
	for _, fps := range []float64{0, -5} {
		err := Pump(context.Background(), &countingSource{}, fps, func([]byte) (bool, error) {
			return true, nil
		}, testLogger())
		if err == nil {
			t.Errorf("Pump(fps=%v) expected error, got nil", fps)
		}
	}
}

func TestPump_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Pump(ctx, &countingSource{}, 10, func([]byte) (bool, error) {
		called = true
		return true, nil
	}, testLogger())
	if err != nil {
		t.Errorf("Pump() error = %v, want nil", err)
	}
	if called {
		t.Error("send called after context was cancelled")
	}
}
