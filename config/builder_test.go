package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jpalmerr/framecast"
)

func TestBuildConfiguration(t *testing.T) {
	cfg := &Config{Port: 9000, Address: "0.0.0.0", Endpoint: "/img"}

	c, err := BuildConfiguration(cfg)
	if err != nil {
		t.Fatalf("BuildConfiguration() error = %v", err)
	}

	if c.Port() != 9000 {
		t.Errorf("Port() = %d, want 9000", c.Port())
	}
	if c.Address() != "0.0.0.0" {
		t.Errorf("Address() = %q, want 0.0.0.0", c.Address())
	}
	if c.Endpoint() != "/img" {
		t.Errorf("Endpoint() = %q, want /img", c.Endpoint())
	}
}

func TestBuildConfiguration_Invalid(t *testing.T) {
	_, err := BuildConfiguration(&Config{Port: 9000, Address: "0.0.0.0", Endpoint: "img"})
	if err == nil {
		t.Error("BuildConfiguration() expected error for endpoint without slash, got nil")
	}
}

func TestBuildOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		cfg  *Config
		want int
	}{
		{"empty", &Config{}, 1},
		{"all set", &Config{
			WriteTimeout:     Duration(time.Second),
			HandshakeTimeout: Duration(time.Second),
			MaxConcurrency:   4,
		}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := BuildOptions(tt.cfg, logger)
			if len(opts) != tt.want {
				t.Errorf("len(BuildOptions()) = %d, want %d", len(opts), tt.want)
			}

			c, _ := framecast.NewConfiguration(0)
			if _, err := framecast.New(c, opts...); err != nil {
				t.Errorf("framecast.New() with built options error = %v", err)
			}
		})
	}
}

func TestBuildOptions_FromParsedConfig(t *testing.T) {
	cfg, err := Parse([]byte("source: rotate:in.jpg"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	c, err := BuildConfiguration(cfg)
	if err != nil {
		t.Fatalf("BuildConfiguration() error = %v", err)
	}
	if _, err := framecast.New(c, BuildOptions(cfg, nil)...); err != nil {
		t.Errorf("framecast.New() error = %v", err)
	}
}

func TestBuildSource(t *testing.T) {
	cfg := &Config{Source: SourceConfig{Type: "file", Path: "a.jpg", FPS: 10, Quality: 80, Watch: true}}

	got := BuildSource(cfg)
	if got.Type != "file" || got.Path != "a.jpg" || got.Quality != 80 || !got.Watch {
		t.Errorf("BuildSource() = %+v", got)
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := LogLevel(&Config{LogLevel: tt.level}); got != tt.want {
			t.Errorf("LogLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
