package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/crickstats/backend/config"
	"github.com/crickstats/backend/internal/entity"
	"github.com/crickstats/backend/internal/model"
	"github.com/crickstats/backend/internal/repository"
	"github.com/crickstats/backend/pkg/crypto"
	"github.com/crickstats/backend/pkg/dateutil"
	"github.com/crickstats/backend/pkg/errorx"
	"github.com/crickstats/backend/pkg/idutil"
	"github.com/crickstats/backend/pkg/pubsub"
	"github.com/crickstats/backend/pkg/xcontext"
	"github.com/fatih/structs"
	"github.com/pkg/math"
	"gorm.io/gorm"
)

type SpinWheelDomain interface {
	GetSpinStatus(ctx context.Context, req *model.GetSpinStatusRequest) (*model.GetSpinStatusResponse, error)
	Spin(ctx context.Context, req *model.SpinRequest) (*model.SpinResponse, error)
	ClaimReward(ctx context.Context, req *model.ClaimRewardRequest) (*model.ClaimRewardResponse, error)
}

type spinWheelDomain struct {
	userRepo       repository.UserRepository
	spinRewardRepo repository.SpinRewardRepository
	publisher      pubsub.Publisher
}

func NewSpinWheelDomain(
	userRepo repository.UserRepository,
	spinRewardRepo repository.SpinRewardRepository,
	publisher pubsub.Publisher,
) *spinWheelDomain {
	return &spinWheelDomain{
		userRepo:       userRepo,
		spinRewardRepo: spinRewardRepo,
		publisher:      publisher,
	}
}

func (d *spinWheelDomain) GetSpinStatus(
	ctx context.Context, req *model.GetSpinStatusRequest,
) (*model.GetSpinStatusResponse, error) {
	user, err := d.requestedUser(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	cfg := xcontext.Configs(ctx).SpinWheel
	spinsLeft := cfg.DailySpinLimit
	if user.SpinDate.Valid && user.SpinDate.String == dateutil.DayKey(time.Now()) {
		spinsLeft = math.MaxInt(0, cfg.DailySpinLimit-user.SpinCount)
	}

	resp := &model.GetSpinStatusResponse{SpinsLeft: spinsLeft}
	if user.SpinLastReward.Valid {
		reward := user.SpinLastReward.Int64
		resp.LastReward = &reward
	}

	return resp, nil
}

func (d *spinWheelDomain) Spin(
	ctx context.Context, req *model.SpinRequest,
) (*model.SpinResponse, error) {
	segments := xcontext.Configs(ctx).SpinWheel.Segments
	if len(segments) == 0 {
		return nil, errorx.New(errorx.InvalidConfiguration, "No wheel segments configured")
	}

	segment := drawSegment(segments)
	settled, err := d.settle(ctx, req.Username, segment, entity.SpinSourceWheel)
	if err != nil {
		return nil, err
	}

	return &model.SpinResponse{
		Reward:     settled.reward,
		NewBalance: settled.newBalance,
		SpinsLeft:  settled.spinsLeft,
	}, nil
}

// ClaimReward is the settlement path of the legacy popup widget, which
// reports the points it landed on itself. The amount is only accepted if it
// matches a configured segment; the daily quota applies all the same.
func (d *spinWheelDomain) ClaimReward(
	ctx context.Context, req *model.ClaimRewardRequest,
) (*model.ClaimRewardResponse, error) {
	segments := xcontext.Configs(ctx).SpinWheel.Segments
	if len(segments) == 0 {
		return nil, errorx.New(errorx.InvalidConfiguration, "No wheel segments configured")
	}

	var matched *config.SegmentConfig
	for i := range segments {
		if int64(segments[i].Value) == req.Points {
			matched = &segments[i]
			break
		}
	}

	if matched == nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid reward amount %d", req.Points)
	}

	settled, err := d.settle(ctx, req.Username, *matched, entity.SpinSourceLegacyClaim)
	if err != nil {
		return nil, err
	}

	return &model.ClaimRewardResponse{
		NewBalance: settled.newBalance,
		SpinsLeft:  settled.spinsLeft,
	}, nil
}

type settlement struct {
	reward     int64
	newBalance int64
	spinsLeft  int
}

// settle consumes one daily spin slot and credits the reward atomically. The
// quota check and the credit commit together or not at all.
func (d *spinWheelDomain) settle(
	ctx context.Context, username string, segment config.SegmentConfig, source entity.SpinSource,
) (*settlement, error) {
	user, err := d.requestedUser(ctx, username)
	if err != nil {
		return nil, err
	}

	amount := int64(segment.Value)

	cfg := xcontext.Configs(ctx).SpinWheel
	dayKey := dateutil.DayKey(time.Now())

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err = d.userRepo.CheckAndUseDailySpin(ctx, user.ID, dayKey, cfg.DailySpinLimit)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot use daily spin: %v", err)
			return nil, errorx.Unknown
		}

		return nil, errorx.New(errorx.QuotaExceeded, "Daily spin limit exceeded")
	}

	newBalance, err := d.userRepo.IncreaseTokens(ctx, user.ID, amount)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot credit reward: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.userRepo.SetLastSpinReward(ctx, user.ID, amount); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record last reward: %v", err)
		return nil, errorx.Unknown
	}

	reward := &entity.SpinReward{
		SnowFlakeBase: entity.SnowFlakeBase{ID: idutil.NextID()},
		UserID:        user.ID,
		Amount:        amount,
		SegmentLabel:  segment.Label,
		Source:        source,
		DayKey:        dayKey,
		Metadata:      entity.Map(structs.Map(segment)),
	}
	if err := d.spinRewardRepo.Create(ctx, reward); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record spin reward: %v", err)
		return nil, errorx.Unknown
	}

	after, err := d.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload user: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	d.publishRewardClaimed(ctx, user.Username, amount, newBalance)

	return &settlement{
		reward:     amount,
		newBalance: newBalance,
		spinsLeft:  math.MaxInt(0, cfg.DailySpinLimit-after.SpinCount),
	}, nil
}

func (d *spinWheelDomain) publishRewardClaimed(
	ctx context.Context, username string, amount, newBalance int64,
) {
	msg, err := json.Marshal(model.RewardClaimedEvent{
		Username:   username,
		Amount:     amount,
		NewBalance: newBalance,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal reward event: %v", err)
		return
	}

	err = d.publisher.Publish(ctx, model.TopicRewardClaimed,
		&pubsub.Pack{Key: []byte(username), Msg: msg})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish reward event: %v", err)
	}
}

// requestedUser resolves the username of the request and rejects requests
// aimed at another user's account.
func (d *spinWheelDomain) requestedUser(ctx context.Context, username string) (*entity.User, error) {
	user, err := d.userRepo.GetByName(ctx, username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
			return nil, errorx.Unknown
		}

		return nil, errorx.New(errorx.NotFound, "Not found user %s", username)
	}

	if requester := xcontext.RequestUserID(ctx); requester != "" && requester != user.ID {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return user, nil
}

// drawSegment picks a segment with probability proportional to its weight.
func drawSegment(segments []config.SegmentConfig) config.SegmentConfig {
	total := 0
	for _, segment := range segments {
		total += segment.Weight
	}

	r := crypto.RandIntn(total)
	for _, segment := range segments {
		if r < segment.Weight {
			return segment
		}
		r -= segment.Weight
	}

	return segments[len(segments)-1]
}
