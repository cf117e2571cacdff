package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNoFrames is returned when a directory holds no JPEG files.
var ErrNoFrames = errors.New("no jpeg files found")

// DirectorySource cycles through the JPEG files of a directory in name order.
// Files are read once, when the source is created.
type DirectorySource struct {
	mu     sync.Mutex
	frames [][]byte
	next   int
}

// NewDirectorySource loads every *.jpg and *.jpeg file directly inside dir.
func NewDirectorySource(dir string) (*DirectorySource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg":
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFrames, dir)
	}
	sort.Strings(names)

	frames := make([][]byte, 0, len(names))
	for _, name := range names {
		frame, err := readFrame(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}

	return &DirectorySource{frames: frames}, nil
}

// Next returns the next file's contents, wrapping after the last one.
func (ds *DirectorySource) Next(ctx context.Context) ([]byte, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	frame := ds.frames[ds.next]
	ds.next = (ds.next + 1) % len(ds.frames)
	return frame, nil
}

// Len returns the number of frames in the cycle.
func (ds *DirectorySource) Len() int {
	return len(ds.frames)
}

// Close is a no-op.
func (ds *DirectorySource) Close() error {
	return nil
}
