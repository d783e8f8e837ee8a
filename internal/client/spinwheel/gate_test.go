package spinwheel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crickstats/backend/config"
	"github.com/stretchr/testify/require"
)

func newTestGate(store Store) (*DisplayGate, *time.Time) {
	gate := NewDisplayGate(store, config.SpinWheelConfigs{
		PopupLimitPerDay: 2,
		PopupRepeatAfter: 12 * time.Hour,
	})

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	gate.now = func() time.Time { return now }
	return gate, &now
}

func TestDisplayGate_dailyLimit(t *testing.T) {
	ctx := context.Background()
	gate, now := newTestGate(NewMemoryStore())

	// Two displays fit into the daily limit; the third is blocked.
	require.True(t, gate.ShouldDisplay(ctx))
	gate.RecordDisplay(ctx)

	*now = now.Add(30 * time.Minute)
	require.True(t, gate.ShouldDisplay(ctx))
	gate.RecordDisplay(ctx)

	*now = now.Add(30 * time.Minute)
	require.False(t, gate.ShouldDisplay(ctx))
}

func TestDisplayGate_repeatAfterFirstDisplay(t *testing.T) {
	ctx := context.Background()
	gate, now := newTestGate(NewMemoryStore())

	first := *now
	gate.RecordDisplay(ctx)
	*now = now.Add(time.Hour)
	gate.RecordDisplay(ctx)

	// The repeat window counts from the first display of the day, not the
	// most recent one.
	*now = first.Add(12*time.Hour - time.Minute)
	require.False(t, gate.ShouldDisplay(ctx))

	*now = first.Add(12 * time.Hour)
	require.True(t, gate.ShouldDisplay(ctx))
}

func TestDisplayGate_newDayStartsFresh(t *testing.T) {
	ctx := context.Background()
	gate, now := newTestGate(NewMemoryStore())

	gate.RecordDisplay(ctx)
	gate.RecordDisplay(ctx)
	require.False(t, gate.ShouldDisplay(ctx))

	// Midnight passes; the old record is simply left behind.
	*now = now.Add(16 * time.Hour)
	require.True(t, gate.ShouldDisplay(ctx))
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}

func (failingStore) Delete(context.Context, string) error {
	return errors.New("disk on fire")
}

func TestDisplayGate_failsOpen(t *testing.T) {
	ctx := context.Background()
	gate, _ := newTestGate(failingStore{})

	require.True(t, gate.ShouldDisplay(ctx))
	gate.RecordDisplay(ctx)
	require.True(t, gate.ShouldDisplay(ctx))
}

func TestDisplayGate_corruptedRecordFailsOpen(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	gate, now := newTestGate(store)

	err := store.Set(ctx, displayKey(gate.now().Format("2006-01-02")), []byte("not json"))
	require.NoError(t, err)
	require.True(t, gate.ShouldDisplay(ctx))

	// A record write heals the corrupted value.
	gate.RecordDisplay(ctx)
	gate.RecordDisplay(ctx)
	*now = now.Add(time.Minute)
	require.False(t, gate.ShouldDisplay(ctx))
}
