package domain

import (
	"context"
	"testing"
	"time"

	"github.com/crickstats/backend/internal/entity"
	"github.com/crickstats/backend/internal/model"
	"github.com/crickstats/backend/internal/repository"
	"github.com/crickstats/backend/pkg/dateutil"
	"github.com/crickstats/backend/pkg/errorx"
	"github.com/crickstats/backend/pkg/pubsub"
	"github.com/crickstats/backend/pkg/testutil"
	"github.com/crickstats/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newSpinWheelDomain(bus *pubsub.InMemoryBus) (*spinWheelDomain, repository.UserRepository) {
	userRepo := repository.NewUserRepository(&testutil.MockRedisClient{})
	return NewSpinWheelDomain(userRepo, repository.NewSpinRewardRepository(), bus), userRepo
}

func segmentValues(ctx context.Context) map[int64]bool {
	values := map[int64]bool{}
	for _, segment := range xcontext.Configs(ctx).SpinWheel.Segments {
		values[int64(segment.Value)] = true
	}

	return values
}

func Test_spinWheelDomain_Spin_consumesDailyQuota(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	d, userRepo := newSpinWheelDomain(pubsub.NewInMemoryBus())
	limit := xcontext.Configs(ctx).SpinWheel.DailySpinLimit
	values := segmentValues(ctx)

	var total int64
	for i := 1; i <= limit; i++ {
		resp, err := d.Spin(ctx, &model.SpinRequest{Username: testutil.User1.Username})
		require.NoError(t, err)
		require.True(t, values[resp.Reward])
		require.Equal(t, limit-i, resp.SpinsLeft)

		total += resp.Reward
		require.EqualValues(t, int64(entity.StartingTokens)+total, resp.NewBalance)
	}

	_, err := d.Spin(ctx, &model.SpinRequest{Username: testutil.User1.Username})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.QuotaExceeded, errx.Code)

	// An exhausted quota must not leak a partial credit.
	user, err := userRepo.GetByID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.EqualValues(t, int64(entity.StartingTokens)+total, user.Tokens)
}

func Test_spinWheelDomain_Spin_rejectsOtherUsers(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User2.ID)
	testutil.CreateFixtureDb(ctx)

	d, _ := newSpinWheelDomain(pubsub.NewInMemoryBus())

	_, err := d.Spin(ctx, &model.SpinRequest{Username: testutil.User1.Username})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.PermissionDenied, errx.Code)
}

func Test_spinWheelDomain_Spin_staleCounterResets(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	d, _ := newSpinWheelDomain(pubsub.NewInMemoryBus())
	limit := xcontext.Configs(ctx).SpinWheel.DailySpinLimit

	// An exhausted counter of yesterday must not block today.
	yesterday := dateutil.DayKey(time.Now().AddDate(0, 0, -1))
	err := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", testutil.User1.ID).
		Updates(map[string]any{"spin_count": limit, "spin_date": yesterday}).Error
	require.NoError(t, err)

	status, err := d.GetSpinStatus(ctx, &model.GetSpinStatusRequest{Username: testutil.User1.Username})
	require.NoError(t, err)
	require.Equal(t, limit, status.SpinsLeft)

	resp, err := d.Spin(ctx, &model.SpinRequest{Username: testutil.User1.Username})
	require.NoError(t, err)
	require.Equal(t, limit-1, resp.SpinsLeft)
}

func Test_spinWheelDomain_GetSpinStatus_reportsLastReward(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	d, _ := newSpinWheelDomain(pubsub.NewInMemoryBus())

	status, err := d.GetSpinStatus(ctx, &model.GetSpinStatusRequest{Username: testutil.User1.Username})
	require.NoError(t, err)
	require.Nil(t, status.LastReward)

	resp, err := d.Spin(ctx, &model.SpinRequest{Username: testutil.User1.Username})
	require.NoError(t, err)

	status, err = d.GetSpinStatus(ctx, &model.GetSpinStatusRequest{Username: testutil.User1.Username})
	require.NoError(t, err)
	require.NotNil(t, status.LastReward)
	require.Equal(t, resp.Reward, *status.LastReward)
}

func Test_spinWheelDomain_ClaimReward(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	d, _ := newSpinWheelDomain(pubsub.NewInMemoryBus())

	resp, err := d.ClaimReward(ctx, &model.ClaimRewardRequest{
		Username: testutil.User1.Username,
		Points:   50,
	})
	require.NoError(t, err)
	require.EqualValues(t, entity.StartingTokens+50, resp.NewBalance)

	// Amounts not painted on any segment are rejected.
	_, err = d.ClaimReward(ctx, &model.ClaimRewardRequest{
		Username: testutil.User1.Username,
		Points:   37,
	})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)
}

func Test_spinWheelDomain_ClaimReward_sharesQuotaWithSpin(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	d, _ := newSpinWheelDomain(pubsub.NewInMemoryBus())
	limit := xcontext.Configs(ctx).SpinWheel.DailySpinLimit

	for i := 0; i < limit; i++ {
		_, err := d.Spin(ctx, &model.SpinRequest{Username: testutil.User1.Username})
		require.NoError(t, err)
	}

	_, err := d.ClaimReward(ctx, &model.ClaimRewardRequest{
		Username: testutil.User1.Username,
		Points:   50,
	})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.QuotaExceeded, errx.Code)
}

func Test_spinWheelDomain_Spin_publishesRewardEvent(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	bus := pubsub.NewInMemoryBus()
	var events []*pubsub.Pack
	bus.Subscribe(model.TopicRewardClaimed, func(ctx context.Context, topic string, pack *pubsub.Pack) {
		events = append(events, pack)
	})

	d, _ := newSpinWheelDomain(bus)
	_, err := d.Spin(ctx, &model.SpinRequest{Username: testutil.User1.Username})
	require.NoError(t, err)

	require.Len(t, events, 1)
	require.Equal(t, testutil.User1.Username, string(events[0].Key))
}

func Test_spinWheelDomain_Spin_recordsHistory(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	d, _ := newSpinWheelDomain(pubsub.NewInMemoryBus())
	spinRewardRepo := repository.NewSpinRewardRepository()

	resp, err := d.Spin(ctx, &model.SpinRequest{Username: testutil.User1.Username})
	require.NoError(t, err)

	last, err := spinRewardRepo.GetLastByUserID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, resp.Reward, last.Amount)
	require.Equal(t, entity.SpinSourceWheel, last.Source)
	require.Equal(t, dateutil.DayKey(time.Now()), last.DayKey)

	count, err := spinRewardRepo.CountByUserDay(ctx, testutil.User1.ID, last.DayKey)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func Test_spinWheelDomain_Spin_unknownUser(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	d, _ := newSpinWheelDomain(pubsub.NewInMemoryBus())

	_, err := d.Spin(ctx, &model.SpinRequest{Username: "nobody"})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.NotFound, errx.Code)
}
