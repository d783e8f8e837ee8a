package domain

import (
	"context"
	"errors"

	"github.com/crickstats/backend/internal/model"
	"github.com/crickstats/backend/internal/repository"
	"github.com/crickstats/backend/pkg/errorx"
	"github.com/crickstats/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserDomain interface {
	GetUser(ctx context.Context, req *model.GetUserRequest) (*model.GetUserResponse, error)
	GetBalance(ctx context.Context, req *model.GetBalanceRequest) (*model.GetBalanceResponse, error)
}

type userDomain struct {
	userRepo repository.UserRepository
}

func NewUserDomain(userRepo repository.UserRepository) *userDomain {
	return &userDomain{userRepo: userRepo}
}

func (d *userDomain) GetUser(
	ctx context.Context, req *model.GetUserRequest,
) (*model.GetUserResponse, error) {
	user, err := d.userRepo.GetByName(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
			return nil, errorx.Unknown
		}

		return nil, errorx.New(errorx.NotFound, "Not found user %s", req.Username)
	}

	return &model.GetUserResponse{User: convertUser(user)}, nil
}

func (d *userDomain) GetBalance(
	ctx context.Context, req *model.GetBalanceRequest,
) (*model.GetBalanceResponse, error) {
	tokens, err := d.userRepo.GetBalance(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get balance: %v", err)
			return nil, errorx.Unknown
		}

		return nil, errorx.New(errorx.NotFound, "Not found user %s", req.Username)
	}

	return &model.GetBalanceResponse{Tokens: tokens}, nil
}
