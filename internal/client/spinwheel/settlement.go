package spinwheel

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/crickstats/backend/internal/model"
	"github.com/crickstats/backend/pkg/api"
	"github.com/crickstats/backend/pkg/errorx"
	"github.com/crickstats/backend/pkg/pubsub"
	"github.com/crickstats/backend/pkg/xcontext"
)

// Settler performs the settlement request of a spin. At most one settlement
// is in flight at any time: a second call while one runs is rejected locally,
// with no network traffic at all. There is no automatic retry; a failed
// settlement surfaces as-is and leaves the balance untouched.
type Settler struct {
	gen       api.Generator
	session   *Session
	balances  *BalanceCache
	publisher pubsub.Publisher

	inFlight atomic.Bool
}

func NewSettler(
	gen api.Generator, session *Session, balances *BalanceCache, publisher pubsub.Publisher,
) *Settler {
	return &Settler{
		gen:       gen,
		session:   session,
		balances:  balances,
		publisher: publisher,
	}
}

// claimTimeout bounds a settlement call. On expiry the claim fails like any
// other network error; it is never retried automatically.
const claimTimeout = 15 * time.Second

// Settle asks the server to draw and credit a reward. The returned amount is
// the only authoritative one, regardless of what the wheel displayed.
func (s *Settler) Settle(ctx context.Context) (*model.SpinResponse, error) {
	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, claimTimeout)
	defer cancel()

	username := s.session.Username()
	resp, err := s.gen.New("/users/%s/spin", username).
		Header("Authorization", "Bearer "+s.session.Token()).
		POST(ctx)
	if err != nil {
		return nil, err
	}

	var out model.SpinResponse
	if err := parseEnvelope(resp, &out); err != nil {
		return nil, err
	}

	s.settled(ctx, username, out.Reward, out.NewBalance)
	return &out, nil
}

// ClaimLegacy settles through the old claim endpoint, which reports the
// amount the widget landed on itself.
func (s *Settler) ClaimLegacy(ctx context.Context, points int64) (*model.ClaimRewardResponse, error) {
	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, claimTimeout)
	defer cancel()

	username := s.session.Username()
	resp, err := s.gen.New("/spin-wheel/claim-reward").
		Header("Authorization", "Bearer "+s.session.Token()).
		Body(api.JSONBody{"username": username, "points": points}).
		POST(ctx)
	if err != nil {
		return nil, err
	}

	var out model.ClaimRewardResponse
	if err := parseEnvelope(resp, &out); err != nil {
		return nil, err
	}

	s.settled(ctx, username, points, out.NewBalance)
	return &out, nil
}

func (s *Settler) acquire() (func(), error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, errorx.New(errorx.TooManyRequests, "A claim is already in flight")
	}

	return func() { s.inFlight.Store(false) }, nil
}

func (s *Settler) settled(ctx context.Context, username string, amount, newBalance int64) {
	s.balances.Set(ctx, username, newBalance)

	if s.publisher == nil {
		return
	}

	msg, err := json.Marshal(model.RewardClaimedEvent{
		Username:   username,
		Amount:     amount,
		NewBalance: newBalance,
	})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot marshal reward event: %v", err)
		return
	}

	err = s.publisher.Publish(ctx, model.TopicRewardClaimed,
		&pubsub.Pack{Key: []byte(username), Msg: msg})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish reward event: %v", err)
	}
}
