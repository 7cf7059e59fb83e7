package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

// Every runs task on each tick of interval until ctx is done. With
// immediate set the first run happens right away instead of after one
// interval.
func Every(ctx context.Context, log *zap.Logger, interval time.Duration, name string, immediate bool, task Task) {
	if interval <= 0 {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	run := func() {
		start := time.Now()
		if err := task(ctx); err != nil {
			log.Error("scheduled task failed", zap.String("task", name), zap.Error(err))
			return
		}
		log.Debug("scheduled task done", zap.String("task", name), zap.Duration("took", time.Since(start)))
	}

	if immediate {
		go run()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
