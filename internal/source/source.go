package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Source types accepted by [Open].
const (
	TypeFile      = "file"
	TypeDirectory = "directory"
	TypeRotate    = "rotate"
)

// DefaultQuality is the JPEG quality used by [RotateSource] when none is set.
const DefaultQuality = 90

// Source produces encoded frames.
type Source interface {
	// Next returns the next frame. The caller must not modify the slice.
	Next(ctx context.Context) ([]byte, error)

	// Close releases any resources held by the source.
	Close() error
}

// Config selects and configures a [Source].
type Config struct {
	// Type is one of TypeFile, TypeDirectory or TypeRotate.
	Type string

	// Path is the image file, or the directory for TypeDirectory.
	Path string

	// Quality is the JPEG quality (1-100) for TypeRotate.
	Quality int

	// Watch reloads the file on change for TypeFile.
	Watch bool
}

// ErrUnknownType is returned by [Open] for an unsupported source type.
var ErrUnknownType = errors.New("unknown source type")

// Open creates the [Source] described by cfg.
func Open(cfg Config, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Type {
	case TypeFile:
		return NewFileSource(cfg.Path, cfg.Watch, logger)
	case TypeDirectory:
		return NewDirectorySource(cfg.Path)
	case TypeRotate:
		quality := cfg.Quality
		if quality == 0 {
			quality = DefaultQuality
		}
		return NewRotateSource(cfg.Path, quality)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
}
