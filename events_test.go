package framecast

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jpalmerr/framecast/internal/dispatch"
)

func TestWithViewerCallback_ConnectAndDrop(t *testing.T) {
	var (
		mu     sync.Mutex
		events []ViewerEvent
	)
	cb := func(ev ViewerEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}
	snapshot := func() []ViewerEvent {
		mu.Lock()
		defer mu.Unlock()
		return append([]ViewerEvent(nil), events...)
	}

	srv := startServer(t, "/stream", WithViewerCallback(cb))
	c := connectViewer(t, srv, "/stream")

	waitFor(t, "connect event", func() bool { return len(snapshot()) == 1 })
	connected := snapshot()[0]
	if connected.Kind != ViewerConnected {
		t.Errorf("Kind = %v, want connected", connected.Kind)
	}
	if connected.RemoteAddr != c.LocalAddr().String() {
		t.Errorf("RemoteAddr = %q, want %q", connected.RemoteAddr, c.LocalAddr().String())
	}
	if connected.ID == "" {
		t.Error("ID is empty")
	}

	if _, err := srv.Send([]byte("f")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	readFrame(t, c, []byte("f"))

	if _, err := srv.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	got := snapshot()
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	dropped := got[1]
	if dropped.Kind != ViewerDropped {
		t.Errorf("Kind = %v, want dropped", dropped.Kind)
	}
	if dropped.ID != connected.ID {
		t.Errorf("ID = %q, want %q", dropped.ID, connected.ID)
	}
	if dropped.Frames != 1 {
		t.Errorf("Frames = %d, want 1", dropped.Frames)
	}
}

func TestWithViewerCallback_MultipleInOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		order []int
	)
	record := func(n int) func(ViewerEvent) {
		return func(ViewerEvent) {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, n)
		}
	}

	srv := startServer(t, "/stream", WithViewerCallback(record(1)), WithViewerCallback(record(2)))
	connectViewer(t, srv, "/stream")

	waitFor(t, "callbacks", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	if order[0] != 1 || order[1] != 2 {
		t.Errorf("callback order = %v, want [1 2]", order)
	}
}

func TestWithViewerCallback_PanicRecovered(t *testing.T) {
	var buf syncBuffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	srv := startServer(t, "/stream",
		WithLogger(logger),
		WithViewerCallback(func(ViewerEvent) { panic("boom") }),
	)

	c := connectViewer(t, srv, "/stream")

	// the dispatcher survives the panic and keeps delivering
	if _, err := srv.Send([]byte("still here")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	readFrame(t, c, []byte("still here"))

	waitFor(t, "panic log", func() bool {
		return strings.Contains(buf.String(), "viewer callback panic")
	})
	if !strings.Contains(buf.String(), "correlation_id=") {
		t.Errorf("panic log missing correlation id: %q", buf.String())
	}
}

func TestViewerEventFromDispatch(t *testing.T) {
	at := time.Now()
	tests := []struct {
		in   dispatch.EventKind
		want ViewerEventKind
	}{
		{dispatch.EventRegistered, ViewerConnected},
		{dispatch.EventEvicted, ViewerEvicted},
		{dispatch.EventDropped, ViewerDropped},
	}

	for _, tt := range tests {
		ev := viewerEventFromDispatch(dispatch.Event{
			Kind:       tt.in,
			ConnID:     "id",
			RemoteAddr: "127.0.0.1:1",
			Frames:     7,
			At:         at,
		})
		if ev.Kind != tt.want {
			t.Errorf("Kind = %v, want %v", ev.Kind, tt.want)
		}
		if ev.ID != "id" || ev.RemoteAddr != "127.0.0.1:1" || ev.Frames != 7 || !ev.At.Equal(at) {
			t.Errorf("fields not carried over: %+v", ev)
		}
	}
}

func TestViewerEventKind_String(t *testing.T) {
	tests := []struct {
		kind ViewerEventKind
		want string
	}{
		{ViewerConnected, "connected"},
		{ViewerEvicted, "evicted"},
		{ViewerDropped, "dropped"},
		{ViewerEventKind(0), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEventHandler_NoCallbacks(t *testing.T) {
	if h := eventHandler(nil, testLogger()); h != nil {
		t.Error("eventHandler(nil) should return nil")
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent writes from log handlers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
