package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/framecast"
	"github.com/jpalmerr/framecast/config"
	"github.com/jpalmerr/framecast/internal/source"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// serveCmd starts streaming frames from the configured source.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stream server",
	Long: `Start the framecast stream server.

The server will:
  - Load configuration from the specified YAML file
  - Open the configured frame source
  - Accept viewers on the configured address and endpoint
  - Send frames to every viewer at the configured rate

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  framecast serve -c config.yaml
  framecast serve --config /etc/framecast/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), config.LogLevel(cfg))

	serverCfg, err := config.BuildConfiguration(cfg)
	if err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	src, err := source.Open(config.BuildSource(cfg), logger)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() { _ = src.Close() }()

	logger.Info("config loaded",
		"source", cfg.Source.Type,
		"path", cfg.Source.Path,
		"fps", cfg.Source.FPS,
	)

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- framecast.Run(ctx, serverCfg, func(ctx context.Context, srv *framecast.Server) error {
			logger.Info("streaming",
				"url", fmt.Sprintf("http://%s%s", srv.Addr(), serverCfg.Endpoint()),
			)
			return source.Pump(ctx, src, cfg.Source.FPS, srv.Send, logger)
		}, config.BuildOptions(cfg, logger)...)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for the server to stop with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
