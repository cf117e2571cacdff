package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrEmptyFrame is returned when a frame file is empty.
var ErrEmptyFrame = errors.New("frame file is empty")

// FileSource serves the contents of one file.
//
// With watching enabled the file is re-read whenever it is written or
// replaced, so another process can update the image while it is streamed.
// A reload that fails keeps the previous frame.
type FileSource struct {
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	frame []byte

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewFileSource reads path and, if watch is set, starts watching it.
func NewFileSource(path string, watch bool, logger *slog.Logger) (*FileSource, error) {
	frame, err := readFrame(path)
	if err != nil {
		return nil, err
	}

	fs := &FileSource{
		path:   path,
		logger: logger,
		frame:  frame,
		done:   make(chan struct{}),
	}
	if !watch {
		return fs, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// watch the directory so that replace-by-rename is seen
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	fs.watcher = watcher

	fs.wg.Add(1)
	go fs.watchLoop()
	return fs, nil
}

// Next returns the most recently loaded frame.
func (fs *FileSource) Next(ctx context.Context) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.frame, nil
}

// Close stops watching. Safe to call multiple times.
func (fs *FileSource) Close() error {
	if fs.watcher == nil {
		return nil
	}
	select {
	case <-fs.done:
		return nil
	default:
		close(fs.done)
	}
	err := fs.watcher.Close()
	fs.wg.Wait()
	return err
}

func (fs *FileSource) watchLoop() {
	defer fs.wg.Done()

	target := filepath.Clean(fs.path)
	for {
		select {
		case <-fs.done:
			return
		case event, ok := <-fs.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			fs.reload()
		case err, ok := <-fs.watcher.Errors:
			if !ok {
				return
			}
			fs.logger.Warn("file watcher error", "path", fs.path, "error", err)
		}
	}
}

func (fs *FileSource) reload() {
	frame, err := readFrame(fs.path)
	if err != nil {
		fs.logger.Debug("frame reload skipped", "path", fs.path, "error", err)
		return
	}

	fs.mu.Lock()
	fs.frame = frame
	fs.mu.Unlock()

	fs.logger.Debug("frame reloaded", "path", fs.path, "frame_bytes", len(frame))
}

func readFrame(path string) ([]byte, error) {
	frame, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFrame, path)
	}
	return frame, nil
}
