package download

import (
	"context"
	"time"

	"github.com/handiism/trackdl/internal/model"
)

// pacingDelay is the pause after a track in serial mode: a fifth of its
// duration. Parallel batches are not paced.
func pacingDelay(meta *model.TrackMetadata, parallel int) time.Duration {
	if parallel != 1 {
		return 0
	}
	return meta.Duration() / 5
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
