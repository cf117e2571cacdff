package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes content to a config file in a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "framecast.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestRunValidate_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
port: 7879
endpoint: /img
write_timeout: 2s
source:
  type: rotate
  path: in.jpg
  fps: 30
`)

	output, err := executeCmd(t, context.Background(), "validate", "-c", configPath)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}

	expectedPhrases := []string{
		"Config is valid!",
		"Stream:  http://127.0.0.1:7879/img",
		"Source:  rotate in.jpg",
		"Rate:    30 fps",
		"write 2s, handshake 5s",
	}

	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\nGot: %s", phrase, output)
		}
	}
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	configPath := writeConfig(t, `
port: 7879
endpoint: img
source: file:a.jpg
`)

	_, err := executeCmd(t, context.Background(), "validate", "-c", configPath)
	if err == nil {
		t.Fatal("validate command expected error for invalid config, got nil")
	}
	if !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("error = %v, want error containing 'invalid config'", err)
	}
	if !strings.Contains(err.Error(), "endpoint must start with /") {
		t.Errorf("error = %v, want error mentioning the endpoint", err)
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	_, err := executeCmd(t, context.Background(), "validate", "-c", filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("validate command expected error for missing file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("error = %v, want error containing 'failed to read config file'", err)
	}
}

func TestRunValidate_EnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_FRAMECAST_IMAGE", "/srv/frame.jpg")

	configPath := writeConfig(t, `
source: file:${TEST_FRAMECAST_IMAGE}
`)

	output, err := executeCmd(t, context.Background(), "validate", "-c", configPath)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}
	if !strings.Contains(output, "Source:  file /srv/frame.jpg") {
		t.Errorf("output missing expanded path\nGot: %s", output)
	}
}
