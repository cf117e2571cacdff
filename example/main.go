package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/framecast"
	"github.com/jpalmerr/framecast/internal/source"
)

func main() {
	var (
		src source.Source
		err error
	)

	// rotate the image given on the command line, or a generated test pattern
	if len(os.Args) > 1 {
		src, err = source.NewRotateSource(os.Args[1], 100)
	} else {
		src, err = NewTestPattern(320, 240, 60)
	}
	if err != nil {
		slog.Error("failed to create frame source", "error", err)
		os.Exit(1)
	}
	defer func() { _ = src.Close() }()

	cfg, err := framecast.NewConfiguration(7879, framecast.WithEndpoint("/img"))
	if err != nil {
		slog.Error("failed to create configuration", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   framecast demo                                      ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://127.0.0.1:7879/img in your browser      ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = framecast.Run(ctx, cfg, func(ctx context.Context, srv *framecast.Server) error {
		ticker := time.NewTicker(17 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}

			frame, err := src.Next(ctx)
			if err != nil {
				return err
			}
			if _, err := srv.Send(frame); err != nil {
				return err
			}
		}
	}, framecast.WithViewerCallback(func(ev framecast.ViewerEvent) {
		slog.Info("viewer "+ev.Kind.String(), "remote_addr", ev.RemoteAddr, "frames", ev.Frames)
	}))
	if err != nil {
		slog.Error("framecast error", "error", err)
		os.Exit(1)
	}
}
