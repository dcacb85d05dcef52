package wait

import (
	"context"
	"time"

	"github.com/go-rod/rod/lib/utils"
)

// Sleeper blocks between two checks and returns an error once it will
// not sleep again.
type Sleeper = utils.Sleeper

// Policy bounds a readiness poll.
type Policy struct {
	Interval    time.Duration `yaml:"interval"`
	MaxInterval time.Duration `yaml:"max_interval"`
	Attempts    int           `yaml:"attempts"` // sleeps allowed after the first check
}

// Sleeper returns a fresh backoff sleeper for one poll.
func (p Policy) Sleeper() Sleeper {
	if p.Attempts <= 0 {
		return utils.CountSleeper(0)
	}
	maxInterval := p.MaxInterval
	if maxInterval < p.Interval {
		maxInterval = p.Interval
	}
	return utils.EachSleepers(
		utils.CountSleeper(p.Attempts),
		utils.BackoffSleeper(p.Interval, maxInterval, nil),
	)
}

// Until checks cond until it holds, cond fails, or sleep gives up. A spent
// budget is reported as met == false with a nil error; a done context is an
// error.
func Until(ctx context.Context, sleep Sleeper, cond func(ctx context.Context) (bool, error)) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		ok, err := cond(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if err := sleep(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return false, ctxErr
			}
			return false, nil
		}
	}
}

// Pause sleeps for d unless ctx ends first.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
