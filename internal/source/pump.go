package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// SendFunc delivers one frame. It reports false once the receiver has
// stopped accepting frames.
type SendFunc func(frame []byte) (bool, error)

// Pump reads frames from src at fps frames per second and passes them to
// send until ctx is done, send reports false, or an error occurs.
//
// A cancelled context is a normal end and returns nil.
func Pump(ctx context.Context, src Source, fps float64, send SendFunc, logger *slog.Logger) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %v", fps)
	}
	if logger == nil {
		logger = slog.Default()
	}

	limiter := rate.NewLimiter(rate.Limit(fps), 1)
	start := time.Now()
	var frames int

	defer func() {
		logger.Debug("frame pump stopped",
			"frames", frames,
			"elapsed", time.Since(start).Round(time.Millisecond).String(),
		)
	}()

	for {
		// Wait only fails when ctx is done or ends before the next slot
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}

		frame, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("failed to produce frame: %w", err)
		}

		ok, err := send(frame)
		if err != nil {
			return fmt.Errorf("failed to send frame: %w", err)
		}
		if !ok {
			logger.Debug("receiver stopped, ending frame pump")
			return nil
		}
		frames++
	}
}
