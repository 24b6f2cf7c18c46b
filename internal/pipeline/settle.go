package pipeline

import (
	"context"
	"time"
)

const (
	// DefaultSettleWait is how long the service gets to deduplicate new uploads
	DefaultSettleWait = 10 * time.Second
	// DefaultSettleStep is the progress interval while settling
	DefaultSettleStep = 2 * time.Second
)

// Settler blocks for a fixed interval so server-side deduplication can
// finish before findings are counted. Counting earlier inflates the number
// of new findings; there is no readiness signal to poll instead.
type Settler struct {
	Wait time.Duration
	Step time.Duration

	// Tick is called after each step with the time waited so far
	Tick func(elapsed time.Duration)

	sleep func(ctx context.Context, d time.Duration) error
}

// NewSettler creates a settler waiting for wait in DefaultSettleStep increments
func NewSettler(wait time.Duration) *Settler {
	return &Settler{Wait: wait, Step: DefaultSettleStep}
}

// Settle waits out the configured interval. It returns early only if ctx is
// cancelled.
func (s *Settler) Settle(ctx context.Context) error {
	if s.Wait <= 0 {
		return nil
	}

	step := s.Step
	if step <= 0 || step > s.Wait {
		step = s.Wait
	}
	sleep := s.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var elapsed time.Duration
	for elapsed < s.Wait {
		d := min(step, s.Wait-elapsed)
		if err := sleep(ctx, d); err != nil {
			return err
		}
		elapsed += d
		if s.Tick != nil {
			s.Tick(elapsed)
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
