package spinwheel

import (
	"time"

	"github.com/crickstats/backend/config"
	"github.com/crickstats/backend/pkg/crypto"
	"github.com/crickstats/backend/pkg/errorx"
)

// Selector picks the segment the wheel animation will stop on. The pick is
// presentation only: the amount actually credited is always the one the
// server answers with, never the one painted on the chosen segment.
type Selector struct {
	segments     []config.SegmentConfig
	minSpins     int
	maxSpins     int
	spinDuration time.Duration
}

func NewSelector(cfg config.SpinWheelConfigs) *Selector {
	return &Selector{
		segments:     cfg.Segments,
		minSpins:     cfg.MinSpins,
		maxSpins:     cfg.MaxSpins,
		spinDuration: cfg.SpinDuration,
	}
}

// Choose returns a uniformly random segment index.
func (s *Selector) Choose() (int, error) {
	if len(s.segments) == 0 {
		return 0, errorx.New(errorx.InvalidConfiguration, "No wheel segments configured")
	}

	return crypto.RandIntn(len(s.segments)), nil
}

func (s *Selector) Segment(index int) config.SegmentConfig {
	return s.segments[index]
}

// SpinPlan describes one wheel animation: full rotations, then a stop at the
// center of the chosen segment.
type SpinPlan struct {
	SegmentIndex int
	Rotations    int
	StopAngle    float64
	Duration     time.Duration
}

func (s *Selector) Plan(index int) SpinPlan {
	segmentAngle := 360.0 / float64(len(s.segments))

	return SpinPlan{
		SegmentIndex: index,
		Rotations:    crypto.RandRange(s.minSpins, s.maxSpins+1),
		StopAngle:    float64(index)*segmentAngle + segmentAngle/2,
		Duration:     s.spinDuration,
	}
}
