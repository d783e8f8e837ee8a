package spinwheel

import (
	"testing"
	"time"

	"github.com/crickstats/backend/config"
	"github.com/crickstats/backend/pkg/errorx"
	"github.com/stretchr/testify/require"
)

func TestSelector_Choose_uniform(t *testing.T) {
	selector := NewSelector(config.DefaultSpinWheel())
	n := len(config.DefaultSpinWheel().Segments)

	const draws = 10000
	counts := make([]int, n)
	for i := 0; i < draws; i++ {
		index, err := selector.Choose()
		require.NoError(t, err)
		counts[index]++
	}

	// With 10000 uniform draws over 8 segments, each count is expected
	// around 1250 with a standard deviation of about 33. These bounds sit
	// beyond five deviations.
	for index, count := range counts {
		require.Greater(t, count, 1050, "segment %d drawn too rarely", index)
		require.Less(t, count, 1450, "segment %d drawn too often", index)
	}
}

func TestSelector_Choose_emptyWheel(t *testing.T) {
	selector := NewSelector(config.SpinWheelConfigs{})

	_, err := selector.Choose()
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.InvalidConfiguration, errx.Code)
}

func TestSelector_Plan_geometry(t *testing.T) {
	cfg := config.DefaultSpinWheel()
	selector := NewSelector(cfg)

	// Eight segments of 45 degrees; the stop angle points at the segment
	// center.
	plan := selector.Plan(0)
	require.Equal(t, 0, plan.SegmentIndex)
	require.InDelta(t, 22.5, plan.StopAngle, 1e-9)

	plan = selector.Plan(3)
	require.InDelta(t, 3*45.0+22.5, plan.StopAngle, 1e-9)

	plan = selector.Plan(7)
	require.InDelta(t, 7*45.0+22.5, plan.StopAngle, 1e-9)
	require.Less(t, plan.StopAngle, 360.0)
}

func TestSelector_Plan_rotationRange(t *testing.T) {
	cfg := config.DefaultSpinWheel()
	selector := NewSelector(cfg)

	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		plan := selector.Plan(0)
		require.GreaterOrEqual(t, plan.Rotations, cfg.MinSpins)
		require.LessOrEqual(t, plan.Rotations, cfg.MaxSpins)
		require.Equal(t, cfg.SpinDuration, plan.Duration)
		seen[plan.Rotations] = true
	}

	// Both ends of the range must actually occur.
	require.True(t, seen[cfg.MinSpins])
	require.True(t, seen[cfg.MaxSpins])
	require.Equal(t, 5*time.Second, cfg.SpinDuration)
}
