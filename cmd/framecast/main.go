// Package main is the entry point for the framecast CLI.
//
// framecast can be used either as a library or as a standalone binary with
// YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	framecast serve -c config.yaml             # Stream frames from the configured source
//	framecast validate -c config.yaml          # Validate configuration
//	framecast probe http://host:7879/img -n 5  # Read frames from a running stream
//	framecast version                          # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "framecast",
	Short: "A minimal MJPEG-over-HTTP broadcast server",
	Long: `framecast streams JPEG frames to any number of viewers as
multipart/x-mixed-replace, the format browsers render as a live image.

Quick start:
  1. Create a config file (framecast.yaml)
  2. Run: framecast serve -c framecast.yaml
  3. Open http://localhost:7879/img in your browser

Example config:
  port: 7879
  endpoint: /img
  source:
    type: rotate
    path: in.jpg
    fps: 60`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this framecast binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "framecast %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
