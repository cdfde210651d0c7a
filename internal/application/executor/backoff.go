package executor

import (
	"context"
	"time"
)

// RescanPolicy configures the resource-arbiter safety net: release
// notifications are the primary, event-driven way a PENDING node gets
// re-tried, but a periodic low-frequency rescan guards against a missed
// notification wedging a plan forever.
type RescanPolicy struct {
	Interval time.Duration
}

func DefaultRescanPolicy() RescanPolicy {
	return RescanPolicy{Interval: 5 * time.Second}
}

// RunBackoffRescan blocks, periodically re-queuing every node still
// parked waiting on either the quantitative resource arbiter or a plan
// mutex for a PENDING_TRY re-attempt, until ctx is cancelled. This is
// the safety net for both: a resource release or mutex hand-off
// normally re-queues its promoted waiter directly (see Executive.release
// and rollbackMutexes), but a periodic rescan guards against a missed
// notification wedging a plan forever. Callers typically run this in its
// own goroutine alongside the executive's main loop.
func RunBackoffRescan(ctx context.Context, e *Executive, policy RescanPolicy) {
	if policy.Interval <= 0 {
		policy.Interval = DefaultRescanPolicy().Interval
	}
	ticker := time.NewTicker(policy.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range e.arbiter.PendingNodes() {
				e.queue.MarkPendingTry(id)
			}
			for _, m := range e.plan.AllMutexes() {
				for _, id := range m.Waiters() {
					e.queue.MarkPendingTry(id)
				}
			}
			if e.queue.Pending() {
				e.RunToQuiescence(ctx)
			}
		}
	}
}
