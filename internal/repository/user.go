package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/crickstats/backend/internal/entity"
	"github.com/crickstats/backend/pkg/xcontext"
	"github.com/crickstats/backend/pkg/xredis"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByName(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByReferralCode(ctx context.Context, code string) (*entity.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// GetBalance serves reads through the balance cache; the database is
	// only hit on a miss.
	GetBalance(ctx context.Context, username string) (int64, error)

	// IncreaseTokens credits (or debits, with a negative amount) the user
	// and returns the new authoritative balance.
	IncreaseTokens(ctx context.Context, id string, amount int64) (int64, error)
	IncreaseReferralCount(ctx context.Context, id string) error

	// CheckAndUseDailySpin consumes one spin slot of the given day. It
	// returns gorm.ErrRecordNotFound if the daily limit is already reached.
	CheckAndUseDailySpin(ctx context.Context, id, dayKey string, limit int) error
	SetLastSpinReward(ctx context.Context, id string, amount int64) error
}

type userRepository struct {
	redisClient xredis.Client
}

func NewUserRepository(redisClient xredis.Client) *userRepository {
	return &userRepository{redisClient: redisClient}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return xcontext.DB(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Take(&record, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetByName(ctx context.Context, username string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Take(&record, "username=?", username).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Take(&record, "email=?", email).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetByReferralCode(ctx context.Context, code string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Take(&record, "referral_code=?", code).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", id).
		Update("last_login", time.Now()).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", id).
		Update("password_hash", passwordHash).Error
}

func (r *userRepository) GetBalance(ctx context.Context, username string) (int64, error) {
	if cached, err := r.redisClient.Get(ctx, balanceKey(username)); err == nil {
		if tokens, err := strconv.ParseInt(cached, 10, 64); err == nil {
			return tokens, nil
		}
	}

	user, err := r.GetByName(ctx, username)
	if err != nil {
		return 0, err
	}

	r.cacheBalance(ctx, user.Username, user.Tokens)
	return user.Tokens, nil
}

func (r *userRepository) IncreaseTokens(ctx context.Context, id string, amount int64) (int64, error) {
	tx := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", id).
		Update("tokens", gorm.Expr("tokens+?", amount))
	if tx.Error != nil {
		return 0, tx.Error
	}

	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	user, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	r.cacheBalance(ctx, user.Username, user.Tokens)
	return user.Tokens, nil
}

func (r *userRepository) IncreaseReferralCount(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", id).
		Update("referral_count", gorm.Expr("referral_count+?", 1)).Error
}

func (r *userRepository) CheckAndUseDailySpin(ctx context.Context, id, dayKey string, limit int) error {
	// Lazily reset a stale counter before consuming a slot. The counter of
	// a previous day is superseded, never merged.
	err := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=? AND (spin_date IS NULL OR spin_date<>?)", id, dayKey).
		Updates(map[string]any{"spin_count": 0, "spin_date": dayKey}).Error
	if err != nil {
		return err
	}

	tx := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=? AND spin_date=? AND spin_count<?", id, dayKey, limit).
		Update("spin_count", gorm.Expr("spin_count+?", 1))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepository) SetLastSpinReward(ctx context.Context, id string, amount int64) error {
	return xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", id).
		Update("spin_last_reward", amount).Error
}

func (r *userRepository) cacheBalance(ctx context.Context, username string, tokens int64) {
	err := r.redisClient.Set(ctx, balanceKey(username), strconv.FormatInt(tokens, 10))
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot cache balance of %s: %v", username, err)
	}
}

func balanceKey(username string) string {
	return "balance:" + username
}
