package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

// safeRun reports a job panic as an error.
func (s *Scheduler) safeRun(ctx context.Context, name string, year int, fn func(context.Context, int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger(ctx).Error("scheduler.job.panic",
				zap.String("job", name),
				zap.Int("performance_year", year),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(ctx, year)
}
