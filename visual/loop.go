package visual

import (
	"context"
	"errors"
	"time"

	"github.com/golang/glog"
)

// RunFixedRate calls tick rate times per second until ctx is done or, when maxFrames is
// positive, maxFrames ticks have run. Tick errors are logged and counted as frames. It
// returns the number of ticks run.
func RunFixedRate(ctx context.Context, rate, maxFrames int, tick func() error) (int, error) {
	if rate <= 0 {
		return 0, errors.New("frame rate must be positive")
	}
	t := time.NewTicker(time.Second / time.Duration(rate))
	defer t.Stop()

	n := 0
	for maxFrames <= 0 || n < maxFrames {
		select {
		case <-ctx.Done():
			return n, nil
		case <-t.C:
		}
		if err := tick(); err != nil {
			glog.Errorf("visual: frame skipped: %v", err)
		}
		n++
	}
	return n, nil
}
