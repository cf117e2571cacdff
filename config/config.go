// Package config provides YAML configuration parsing for framecast.
//
// This package enables running framecast as a standalone binary with a
// configuration file, as an alternative to using the library directly.
//
// Example configuration:
//
//	port: 7879
//	address: 0.0.0.0
//	endpoint: /img
//	write_timeout: 5s
//	log_level: info
//
//	source:
//	  type: rotate
//	  path: ${FRAME_PATH:-in.jpg}
//	  fps: 60
//	  quality: 100
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort             = 7879
	defaultAddress          = "127.0.0.1"
	defaultEndpoint         = "/"
	defaultWriteTimeout     = 5 * time.Second
	defaultHandshakeTimeout = 5 * time.Second
	defaultMaxConcurrency   = 8
	defaultLogLevel         = "info"
	defaultFPS              = 60
	defaultQuality          = 90

	// maxFPS keeps a typo from turning the producer into a busy loop.
	maxFPS = 1000
)

// Config is the root configuration structure for framecast.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Port is the TCP port to listen on. Defaults to 7879.
	Port int `yaml:"port"`

	// Address is the bind address. Defaults to 127.0.0.1.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Address string `yaml:"address"`

	// Endpoint is the request path viewers connect to. Defaults to "/".
	Endpoint string `yaml:"endpoint"`

	// WriteTimeout bounds a single frame write to one viewer. Defaults to 5s.
	WriteTimeout Duration `yaml:"write_timeout"`

	// HandshakeTimeout bounds reading a viewer's request. Defaults to 5s.
	HandshakeTimeout Duration `yaml:"handshake_timeout"`

	// MaxConcurrency is the number of viewers written to in parallel.
	// Defaults to 8.
	MaxConcurrency int `yaml:"max_concurrency"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	// Source configures the frame producer.
	Source SourceConfig `yaml:"source"`
}

// SourceConfig selects the frame producer.
//
// It supports two formats in YAML:
//
// Shorthand string:
//
//	source: file:frame.jpg
//	source: directory:frames/
//	source: rotate:in.jpg
//
// Structured object:
//
//	source:
//	  type: file
//	  path: frame.jpg
//	  watch: true
type SourceConfig struct {
	// Type is the source type: "file", "directory" or "rotate".
	Type string

	// Path is the image file, or the directory for type directory.
	Path string

	// FPS is the number of frames sent per second. Defaults to 60.
	FPS float64

	// Quality is the JPEG quality for type rotate. Defaults to 90.
	Quality int

	// Watch reloads the image when it changes, for type file.
	Watch bool
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler for SourceConfig.
func (s *SourceConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v string
		if err := node.Decode(&v); err != nil {
			return err
		}
		return s.parseShorthand(v)
	}

	if node.Kind == yaml.MappingNode {
		// temporary struct to avoid infinite recursion
		var raw struct {
			Type    string  `yaml:"type"`
			Path    string  `yaml:"path"`
			FPS     float64 `yaml:"fps"`
			Quality int     `yaml:"quality"`
			Watch   bool    `yaml:"watch"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		s.Type = raw.Type
		s.Path = raw.Path
		s.FPS = raw.FPS
		s.Quality = raw.Quality
		s.Watch = raw.Watch
		return nil
	}

	return fmt.Errorf("source must be a string or object, got %v", node.Kind)
}

// parseShorthand parses "type:path" source syntax.
func (s *SourceConfig) parseShorthand(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}

	typ, path, ok := strings.Cut(v, ":")
	if !ok {
		return fmt.Errorf("invalid source %q (expected 'file:path', 'directory:path' or 'rotate:path')", v)
	}
	s.Type = typ
	s.Path = path
	return nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		varName := submatches[1]
		hasDefault := submatches[2] != ""
		defaultVal := submatches[3]

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in Address and Source.Path.
// Defaults are applied to every field left unset.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Address == "" {
		c.Address = defaultAddress
	}
	if c.Endpoint == "" {
		c.Endpoint = defaultEndpoint
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = Duration(defaultWriteTimeout)
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = Duration(defaultHandshakeTimeout)
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = defaultMaxConcurrency
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Source.FPS == 0 {
		c.Source.FPS = defaultFPS
	}
	if c.Source.Quality == 0 {
		c.Source.Quality = defaultQuality
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	address, err := expandEnvVars(c.Address)
	if err != nil {
		return fmt.Errorf("address: %w", err)
	}
	if strings.ContainsAny(address, " \t\r\n") {
		return fmt.Errorf("address cannot contain whitespace, got %q", address)
	}
	if address == "" {
		address = defaultAddress
	}
	c.Address = address

	if !strings.HasPrefix(c.Endpoint, "/") {
		return fmt.Errorf("endpoint must start with /, got %q", c.Endpoint)
	}
	if strings.ContainsAny(c.Endpoint, " \t\r\n") {
		return fmt.Errorf("endpoint cannot contain whitespace, got %q", c.Endpoint)
	}

	if c.WriteTimeout.Duration() < 0 {
		return fmt.Errorf("write_timeout cannot be negative, got %s", c.WriteTimeout.Duration())
	}
	if c.HandshakeTimeout.Duration() < 0 {
		return fmt.Errorf("handshake_timeout cannot be negative, got %s", c.HandshakeTimeout.Duration())
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency cannot be negative, got %d", c.MaxConcurrency)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}

	return c.Source.expandAndValidate()
}

func (s *SourceConfig) expandAndValidate() error {
	switch s.Type {
	case "":
		return errors.New("source: type is required")
	case "file", "directory", "rotate":
	default:
		return fmt.Errorf("source: unknown type %q (expected file, directory or rotate)", s.Type)
	}

	if s.Path == "" {
		return fmt.Errorf("source (%s): path is required", s.Type)
	}
	path, err := expandEnvVars(s.Path)
	if err != nil {
		return fmt.Errorf("source (%s): path: %w", s.Type, err)
	}
	s.Path = path

	if s.FPS < 0 || s.FPS > maxFPS {
		return fmt.Errorf("source (%s): fps must be between 0 and %d, got %v", s.Type, maxFPS, s.FPS)
	}
	if s.Quality < 1 || s.Quality > 100 {
		return fmt.Errorf("source (%s): quality must be between 1 and 100, got %d", s.Type, s.Quality)
	}
	if s.Watch && s.Type != "file" {
		return fmt.Errorf("source (%s): watch is only supported for type file", s.Type)
	}

	return nil
}
