package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/framecast/internal/viewer"
)

// probeCmd reads frames from a running stream.
var probeCmd = &cobra.Command{
	Use:   "probe URL",
	Short: "Read frames from a running stream",
	Long: `Connect to an MJPEG stream, read a number of frames and print their
sizes. Useful to check that a server is reachable and producing frames.

Exit codes:
  0 - All requested frames were received
  1 - The stream could not be opened or ended early

Example:
  framecast probe http://127.0.0.1:7879/img
  framecast probe http://camera.local:7879/img -n 100 --timeout 30s`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().IntP("frames", "n", 5, "number of frames to read")
	probeCmd.Flags().Duration("timeout", 10*time.Second, "overall time limit")
}

func runProbe(cmd *cobra.Command, args []string) error {
	frames, _ := cmd.Flags().GetInt("frames")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if frames < 1 {
		return errors.New("frames must be at least 1")
	}
	if timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client := viewer.NewClient(timeout)
	defer client.Close()

	out := cmd.OutOrStdout()
	session := uuid.NewString()
	fmt.Fprintf(out, "probe %s: %s\n", session, args[0])

	stream, err := client.Open(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer func() { _ = stream.Close() }()

	start := time.Now()
	var total int
	for i := 1; i <= frames; i++ {
		f, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("stream ended after %d frames", i-1)
			}
			if ctx.Err() != nil {
				return fmt.Errorf("timed out after %d frames", i-1)
			}
			return fmt.Errorf("failed to read frame %d: %w", i, err)
		}
		total += len(f.Data)
		fmt.Fprintf(out, "  frame %d: %d bytes (%s)\n", i, len(f.Data), f.Header.Get("Content-Type"))
	}

	elapsed := time.Since(start)
	fmt.Fprintf(out, "received %d frames, %d bytes in %s\n", frames, total, elapsed.Round(time.Millisecond))
	return nil
}
