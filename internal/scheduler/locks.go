package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/meritscore/internal/lock"
)

func jobLockKey(job string, year int) string {
	return fmt.Sprintf("scheduler:%s:%d", job, year)
}

// acquireJobLock keeps replicas from running the same job for the same year
// at once. A lock still held after LockWait means another replica owns the
// run: held is false and err is nil.
func (s *Scheduler) acquireJobLock(ctx context.Context, job string, year int) (lock.Unlock, bool, error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.LockWait)
	defer cancel()

	unlock, err := s.locker.Lock(waitCtx, jobLockKey(job, year))
	switch {
	case err == nil:
		return unlock, true, nil
	case errors.Is(err, lock.ErrLockContention) && ctx.Err() == nil:
		return nil, false, nil
	default:
		return nil, false, err
	}
}
