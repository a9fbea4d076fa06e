package capture

import (
	"context"
	"time"
)

// Delay blocks for d or until ctx is done. A non-positive d only reports
// cancellation.
func Delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
