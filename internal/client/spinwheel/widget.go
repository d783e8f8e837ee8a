package spinwheel

import (
	"context"

	"github.com/crickstats/backend/config"
	"github.com/crickstats/backend/internal/domain/cron"
	"github.com/crickstats/backend/internal/model"
	"github.com/crickstats/backend/pkg/api"
	"github.com/crickstats/backend/pkg/pubsub"
	"github.com/crickstats/backend/pkg/xcontext"
)

// Widget wires the full popup together: session, display gate, wheel, quota,
// and balance cache, plus the background quota poll.
type Widget struct {
	Session  *Session
	Gate     *DisplayGate
	Quota    *QuotaTracker
	Balances *BalanceCache
	Wheel    *Wheel

	cronManager *cron.CronJobManager
}

func NewWidget(
	cfg config.SpinWheelConfigs, gen api.Generator, store Store, bus *pubsub.InMemoryBus,
) *Widget {
	session := NewSession(gen, store)
	balances := NewBalanceCache(store, bus)
	quota := NewQuotaTracker(gen, session, cfg)
	settler := NewSettler(gen, session, balances, bus)

	w := &Widget{
		Session:     session,
		Gate:        NewDisplayGate(store, cfg),
		Quota:       quota,
		Balances:    balances,
		Wheel:       NewWheel(NewSelector(cfg), settler, quota),
		cronManager: cron.NewCronJobManager(),
	}

	w.cronManager.Register(quota)
	return w
}

// Start restores a persisted session and begins the quota poll. It returns
// immediately; the poll runs until Stop.
func (w *Widget) Start(ctx context.Context) {
	if err := w.Session.Restore(ctx); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot restore session: %v", err)
	}

	if w.Session.Authenticated() {
		if err := w.Quota.Refresh(ctx); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot refresh spin quota: %v", err)
		}
	}

	go w.cronManager.Start(ctx)
}

func (w *Widget) Stop(ctx context.Context) {
	w.cronManager.Cancel(ctx)
}

func (w *Widget) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := w.Session.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	w.Balances.Set(ctx, user.Username, user.Tokens)
	if err := w.Quota.Refresh(ctx); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot refresh spin quota: %v", err)
	}

	return user, nil
}

func (w *Widget) Register(
	ctx context.Context, username, email, password, referralCode string,
) (*model.User, error) {
	user, err := w.Session.Register(ctx, username, email, password, referralCode)
	if err != nil {
		return nil, err
	}

	w.Balances.Set(ctx, user.Username, user.Tokens)
	if err := w.Quota.Refresh(ctx); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot refresh spin quota: %v", err)
	}

	return user, nil
}

func (w *Widget) Logout(ctx context.Context) {
	if username := w.Session.Username(); username != "" {
		w.Balances.Clear(ctx, username)
	}

	w.Session.Logout(ctx)
}

// MaybeShowPopup consults the display gate and, if the popup may show,
// records the display and reports true. The caller renders the popup itself.
func (w *Widget) MaybeShowPopup(ctx context.Context) bool {
	if !w.Session.Authenticated() {
		return false
	}

	if !w.Gate.ShouldDisplay(ctx) {
		return false
	}

	w.Gate.RecordDisplay(ctx)
	return true
}
