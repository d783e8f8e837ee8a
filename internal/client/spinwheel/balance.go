package spinwheel

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/crickstats/backend/internal/model"
	"github.com/crickstats/backend/pkg/pubsub"
	"github.com/crickstats/backend/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
)

// BalanceCache mirrors the server-side balance for display. Writes follow
// the last authoritative server answer; there is no merging of concurrent
// updates, the newest write simply wins.
type BalanceCache struct {
	store    Store
	balances *xsync.MapOf[string, int64]
}

func NewBalanceCache(store Store, subscriber pubsub.Subscriber) *BalanceCache {
	c := &BalanceCache{
		store:    store,
		balances: xsync.NewMapOf[int64](),
	}

	if subscriber != nil {
		subscriber.Subscribe(model.TopicRewardClaimed, c.onRewardClaimed)
	}

	return c
}

func (c *BalanceCache) Set(ctx context.Context, username string, tokens int64) {
	c.balances.Store(username, tokens)

	err := c.store.Set(ctx, balanceKey(username), []byte(strconv.FormatInt(tokens, 10)))
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot persist balance of %s: %v", username, err)
	}
}

func (c *BalanceCache) Get(ctx context.Context, username string) (int64, bool) {
	if tokens, ok := c.balances.Load(username); ok {
		return tokens, true
	}

	value, err := c.store.Get(ctx, balanceKey(username))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			xcontext.Logger(ctx).Warnf("Cannot load balance of %s: %v", username, err)
		}

		return 0, false
	}

	tokens, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return 0, false
	}

	c.balances.Store(username, tokens)
	return tokens, true
}

// Clear forgets the balance of a user, both in memory and on disk. A store
// of a logged-out user must not answer with the old balance.
func (c *BalanceCache) Clear(ctx context.Context, username string) {
	c.balances.Delete(username)

	if err := c.store.Delete(ctx, balanceKey(username)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot clear balance of %s: %v", username, err)
	}
}

func (c *BalanceCache) onRewardClaimed(ctx context.Context, topic string, pack *pubsub.Pack) {
	var event model.RewardClaimedEvent
	if err := json.Unmarshal(pack.Msg, &event); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot unmarshal reward event: %v", err)
		return
	}

	c.Set(ctx, event.Username, event.NewBalance)
}

func balanceKey(username string) string {
	return "balance:" + username
}
