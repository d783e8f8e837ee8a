package repository

import (
	"context"

	"github.com/crickstats/backend/internal/entity"
	"github.com/crickstats/backend/pkg/xcontext"
)

type SpinRewardRepository interface {
	Create(ctx context.Context, reward *entity.SpinReward) error
	GetLastByUserID(ctx context.Context, userID string) (*entity.SpinReward, error)
	CountByUserDay(ctx context.Context, userID, dayKey string) (int64, error)
}

type spinRewardRepository struct{}

func NewSpinRewardRepository() *spinRewardRepository {
	return &spinRewardRepository{}
}

func (r *spinRewardRepository) Create(ctx context.Context, reward *entity.SpinReward) error {
	return xcontext.DB(ctx).Create(reward).Error
}

func (r *spinRewardRepository) GetLastByUserID(ctx context.Context, userID string) (*entity.SpinReward, error) {
	var result entity.SpinReward
	err := xcontext.DB(ctx).Where("user_id=?", userID).
		Order("id DESC").Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *spinRewardRepository) CountByUserDay(ctx context.Context, userID, dayKey string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.SpinReward{}).
		Where("user_id=? AND day_key=?", userID, dayKey).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
