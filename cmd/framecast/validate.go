package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/framecast/config"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Check a framecast configuration file and print the stream it describes.

Environment references in the address and source path are expanded, then
the port (1-65535), bind address, endpoint path, timeouts, log level and the
source block are checked. The source type must be file, directory or rotate
and its path must be set; watch is only allowed for file sources. The source
itself is not opened, so a missing image is only reported by "serve".

On success the stream URL, source, frame rate and timeouts are printed.
Errors name the source type they concern, e.g.
"source (rotate): quality must be between 1 and 100, got 0".

  framecast validate -c stream.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	serverCfg, err := config.BuildConfiguration(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Stream:  http://%s%s\n", serverCfg.Addr(), serverCfg.Endpoint())
	fmt.Fprintf(out, "  Source:  %s %s\n", cfg.Source.Type, cfg.Source.Path)
	fmt.Fprintf(out, "  Rate:    %g fps\n", cfg.Source.FPS)
	fmt.Fprintf(out, "  Timeouts: write %s, handshake %s\n",
		cfg.WriteTimeout.Duration(), cfg.HandshakeTimeout.Duration())

	return nil
}
