package repository

import (
	"context"
	"time"

	"github.com/crickstats/backend/internal/entity"
	"github.com/crickstats/backend/pkg/xcontext"
)

type PasswordResetRepository interface {
	Create(ctx context.Context, reset *entity.PasswordReset) error
	GetByToken(ctx context.Context, token string) (*entity.PasswordReset, error)
	MarkUsed(ctx context.Context, id string) error
}

type passwordResetRepository struct{}

func NewPasswordResetRepository() *passwordResetRepository {
	return &passwordResetRepository{}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *entity.PasswordReset) error {
	return xcontext.DB(ctx).Create(reset).Error
}

func (r *passwordResetRepository) GetByToken(ctx context.Context, token string) (*entity.PasswordReset, error) {
	var record entity.PasswordReset
	err := xcontext.DB(ctx).
		Take(&record, "token=? AND used=? AND expires_at>?", token, false, time.Now()).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *passwordResetRepository) MarkUsed(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Model(&entity.PasswordReset{}).
		Where("id=?", id).
		Update("used", true).Error
}
