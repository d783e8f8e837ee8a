package spinwheel

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/crickstats/backend/config"
	"github.com/crickstats/backend/pkg/dateutil"
	"github.com/crickstats/backend/pkg/xcontext"
)

// DisplayGate decides whether the popup may be shown. The decision is purely
// local; it never talks to the server and it never blocks the popup on a
// broken store.
type DisplayGate struct {
	store       Store
	limit       int
	repeatAfter time.Duration

	now func() time.Time
}

func NewDisplayGate(store Store, cfg config.SpinWheelConfigs) *DisplayGate {
	return &DisplayGate{
		store:       store,
		limit:       cfg.PopupLimitPerDay,
		repeatAfter: cfg.PopupRepeatAfter,
		now:         time.Now,
	}
}

type displayRecord struct {
	Count int         `json:"count"`
	Times []time.Time `json:"times"`
}

// ShouldDisplay reports whether the popup may be shown now. The popup shows
// if fewer than the daily limit of displays happened today, OR if enough time
// passed since the first display of today. Both conditions stale out together
// with the day key, so a new day always starts fresh.
//
// Storage failures fail open: a show too many is preferred over a user never
// seeing the wheel.
func (g *DisplayGate) ShouldDisplay(ctx context.Context) bool {
	record, err := g.load(ctx, dateutil.DayKey(g.now()))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			xcontext.Logger(ctx).Warnf("Cannot load display record: %v", err)
		}

		return true
	}

	if record.Count < g.limit {
		return true
	}

	if len(record.Times) > 0 && g.now().Sub(record.Times[0]) >= g.repeatAfter {
		return true
	}

	return false
}

// RecordDisplay notes that the popup was shown now. A failed write is logged
// and swallowed; the popup was already on screen.
func (g *DisplayGate) RecordDisplay(ctx context.Context) {
	dayKey := dateutil.DayKey(g.now())

	record, err := g.load(ctx, dayKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			xcontext.Logger(ctx).Warnf("Cannot load display record: %v", err)
		}

		record = &displayRecord{}
	}

	record.Count++
	record.Times = append(record.Times, g.now())

	value, err := json.Marshal(record)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot marshal display record: %v", err)
		return
	}

	if err := g.store.Set(ctx, displayKey(dayKey), value); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot save display record: %v", err)
	}
}

func (g *DisplayGate) load(ctx context.Context, dayKey string) (*displayRecord, error) {
	value, err := g.store.Get(ctx, displayKey(dayKey))
	if err != nil {
		return nil, err
	}

	var record displayRecord
	if err := json.Unmarshal(value, &record); err != nil {
		return nil, err
	}

	return &record, nil
}

func displayKey(dayKey string) string {
	return "popup_display:" + dayKey
}
