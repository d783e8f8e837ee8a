package spinwheel

import (
	"context"
	"sync"
	"time"

	"github.com/crickstats/backend/config"
	"github.com/crickstats/backend/internal/model"
	"github.com/crickstats/backend/pkg/api"
	"github.com/crickstats/backend/pkg/xcontext"
)

// QuotaTracker mirrors the server-side daily spin quota. It never counts
// locally: every update replaces the whole local state with the server
// answer, so a stale or partial view is impossible after a refresh.
type QuotaTracker struct {
	gen     api.Generator
	session *Session

	interval time.Duration

	mutex      sync.RWMutex
	spinsLeft  int
	lastReward *int64
}

func NewQuotaTracker(gen api.Generator, session *Session, cfg config.SpinWheelConfigs) *QuotaTracker {
	return &QuotaTracker{
		gen:      gen,
		session:  session,
		interval: cfg.QuotaPollInterval,
	}
}

// refreshTimeout bounds a single status read; the poll must never pile up
// behind a hanging server.
const refreshTimeout = 10 * time.Second

// Refresh pulls the current quota from the server and replaces the local
// state wholesale. Without a logged-in user it is a no-op.
func (t *QuotaTracker) Refresh(ctx context.Context) error {
	username := t.session.Username()
	if username == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	resp, err := t.gen.New("/users/%s/spin_status", username).
		Header("Authorization", "Bearer "+t.session.Token()).
		GET(ctx)
	if err != nil {
		return err
	}

	var status model.GetSpinStatusResponse
	if err := parseEnvelope(resp, &status); err != nil {
		return err
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.spinsLeft = status.SpinsLeft
	t.lastReward = status.LastReward
	return nil
}

// ApplyClaim replaces the local state with the outcome of a settled claim.
// The claim response is as authoritative as a status answer.
func (t *QuotaTracker) ApplyClaim(spinsLeft int, reward int64) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.spinsLeft = spinsLeft
	t.lastReward = &reward
}

func (t *QuotaTracker) SpinsLeft() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.spinsLeft
}

func (t *QuotaTracker) CanSpin() bool {
	return t.SpinsLeft() > 0
}

func (t *QuotaTracker) LastReward() (int64, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if t.lastReward == nil {
		return 0, false
	}

	return *t.lastReward, true
}

// The tracker is its own cron job, polling the quota on a fixed interval so
// an exhausted wheel re-enables once the server says so.

func (t *QuotaTracker) Do(ctx context.Context) {
	if err := t.Refresh(ctx); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot refresh spin quota: %v", err)
	}
}

func (t *QuotaTracker) RunNow() bool {
	return false
}

func (t *QuotaTracker) Next() time.Time {
	return time.Now().Add(t.interval)
}
