package spinwheel

import (
	"context"
	"time"

	"github.com/crickstats/backend/pkg/errorx"
	"golang.org/x/sync/errgroup"
)

// Animator plays the wheel animation for a plan. The default one just waits
// the planned duration; a UI plugs in its own.
type Animator func(ctx context.Context, plan SpinPlan) error

func sleepAnimator(ctx context.Context, plan SpinPlan) error {
	timer := time.NewTimer(plan.Duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Wheel orchestrates one spin: the local quota check, the animation, and the
// settlement. Animation and settlement run concurrently; the spin resolves
// once both finished, so a fast server still spins the full duration and a
// slow server keeps the wheel turning.
type Wheel struct {
	selector *Selector
	settler  *Settler
	quota    *QuotaTracker
	animate  Animator
}

func NewWheel(selector *Selector, settler *Settler, quota *QuotaTracker) *Wheel {
	return &Wheel{
		selector: selector,
		settler:  settler,
		quota:    quota,
		animate:  sleepAnimator,
	}
}

func (w *Wheel) SetAnimator(animate Animator) {
	w.animate = animate
}

type SpinResult struct {
	Plan SpinPlan

	// Reward is the amount the server credited. It is independent of the
	// segment the animation stopped on.
	Reward     int64
	NewBalance int64
	SpinsLeft  int
}

func (w *Wheel) Spin(ctx context.Context) (*SpinResult, error) {
	if !w.quota.CanSpin() {
		return nil, errorx.New(errorx.QuotaExceeded, "Daily spin limit exceeded")
	}

	index, err := w.selector.Choose()
	if err != nil {
		return nil, err
	}

	plan := w.selector.Plan(index)

	var settledSpin *SpinResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.animate(gctx, plan)
	})
	g.Go(func() error {
		settled, err := w.settler.Settle(gctx)
		if err != nil {
			return err
		}

		settledSpin = &SpinResult{
			Plan:       plan,
			Reward:     settled.Reward,
			NewBalance: settled.NewBalance,
			SpinsLeft:  settled.SpinsLeft,
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	w.quota.ApplyClaim(settledSpin.SpinsLeft, settledSpin.Reward)
	return settledSpin, nil
}
