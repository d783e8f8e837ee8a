package domain

import (
	"context"
	"errors"
	"time"

	"github.com/crickstats/backend/internal/entity"
	"github.com/crickstats/backend/internal/model"
	"github.com/crickstats/backend/internal/repository"
	"github.com/crickstats/backend/pkg/crypto"
	"github.com/crickstats/backend/pkg/errorx"
	"github.com/crickstats/backend/pkg/xcontext"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthDomain interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	ForgotPassword(ctx context.Context, req *model.ForgotPasswordRequest) (*model.ForgotPasswordResponse, error)
	ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) (*model.ResetPasswordResponse, error)
}

type authDomain struct {
	userRepo          repository.UserRepository
	passwordResetRepo repository.PasswordResetRepository
}

func NewAuthDomain(
	userRepo repository.UserRepository,
	passwordResetRepo repository.PasswordResetRepository,
) *authDomain {
	return &authDomain{
		userRepo:          userRepo,
		passwordResetRepo: passwordResetRepo,
	}
}

func (d *authDomain) Register(
	ctx context.Context, req *model.RegisterRequest,
) (*model.RegisterResponse, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, errorx.New(errorx.BadRequest, "Username, email, and password are required")
	}

	if _, err := d.userRepo.GetByName(ctx, req.Username); err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "Username %s is taken", req.Username)
	}

	if _, err := d.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "Email is already registered")
	}

	passwordHash, err := crypto.HashPassword(req.Password)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot hash password: %v", err)
		return nil, errorx.Unknown
	}

	var referrer *entity.User
	if req.ReferralCode != "" {
		referrer, err = d.userRepo.GetByReferralCode(ctx, req.ReferralCode)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				xcontext.Logger(ctx).Errorf("Cannot get referrer: %v", err)
				return nil, errorx.Unknown
			}

			return nil, errorx.New(errorx.NotFound, "Invalid referral code")
		}
	}

	user := &entity.User{
		Base:         entity.Base{ID: uuid.NewString()},
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Tokens:       entity.StartingTokens,
		IsActive:     true,
		ReferralCode: crypto.GenerateReferralCode(),
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.userRepo.Create(ctx, user); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create user: %v", err)
		return nil, errorx.Unknown
	}

	if referrer != nil {
		if _, err := d.userRepo.IncreaseTokens(ctx, referrer.ID, entity.ReferralBonus); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot credit referrer: %v", err)
			return nil, errorx.Unknown
		}

		if err := d.userRepo.IncreaseReferralCount(ctx, referrer.ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot increase referral count: %v", err)
			return nil, errorx.Unknown
		}
	}

	token, err := xcontext.TokenEngine(ctx).Generate(user.ID, model.AccessToken{
		ID:       user.ID,
		Username: user.Username,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.RegisterResponse{
		AccessToken: token,
		User:        convertUser(user),
	}, nil
}

func (d *authDomain) Login(
	ctx context.Context, req *model.LoginRequest,
) (*model.LoginResponse, error) {
	user, err := d.userRepo.GetByName(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
			return nil, errorx.Unknown
		}

		return nil, errorx.New(errorx.Unauthenticated, "Invalid username or password")
	}

	if !crypto.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, errorx.New(errorx.Unauthenticated, "Invalid username or password")
	}

	if !user.IsActive {
		return nil, errorx.New(errorx.PermissionDenied, "Account is deactivated")
	}

	if err := d.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update last login: %v", err)
		return nil, errorx.Unknown
	}

	token, err := xcontext.TokenEngine(ctx).Generate(user.ID, model.AccessToken{
		ID:       user.ID,
		Username: user.Username,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	return &model.LoginResponse{
		AccessToken: token,
		User:        convertUser(user),
	}, nil
}

// ForgotPassword always answers success, so the endpoint cannot be used to
// probe which emails exist.
func (d *authDomain) ForgotPassword(
	ctx context.Context, req *model.ForgotPasswordRequest,
) (*model.ForgotPasswordResponse, error) {
	user, err := d.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user by email: %v", err)
			return nil, errorx.Unknown
		}

		return &model.ForgotPasswordResponse{}, nil
	}

	token, err := crypto.GenerateRandomString()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate reset token: %v", err)
		return nil, errorx.Unknown
	}

	// Only the digest is stored; a leaked table cannot be replayed as reset
	// links.
	reset := &entity.PasswordReset{
		Base:      entity.Base{ID: uuid.NewString()},
		UserID:    user.ID,
		Token:     crypto.SHA256([]byte(token)),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	if err := d.passwordResetRepo.Create(ctx, reset); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create password reset: %v", err)
		return nil, errorx.Unknown
	}

	// Delivery is out of band. The token is only logged until a mailer is
	// plugged in.
	xcontext.Logger(ctx).Infof("Password reset token for %s issued", user.Username)

	return &model.ForgotPasswordResponse{}, nil
}

func (d *authDomain) ResetPassword(
	ctx context.Context, req *model.ResetPasswordRequest,
) (*model.ResetPasswordResponse, error) {
	if req.Password == "" {
		return nil, errorx.New(errorx.BadRequest, "Password is required")
	}

	reset, err := d.passwordResetRepo.GetByToken(ctx, crypto.SHA256([]byte(req.Token)))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get password reset: %v", err)
			return nil, errorx.Unknown
		}

		return nil, errorx.New(errorx.BadRequest, "Invalid or expired reset token")
	}

	passwordHash, err := crypto.HashPassword(req.Password)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot hash password: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.userRepo.UpdatePassword(ctx, reset.UserID, passwordHash); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update password: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.passwordResetRepo.MarkUsed(ctx, reset.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark reset token used: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.ResetPasswordResponse{}, nil
}
