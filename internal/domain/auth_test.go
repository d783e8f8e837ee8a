package domain

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/crickstats/backend/internal/entity"
	"github.com/crickstats/backend/internal/model"
	"github.com/crickstats/backend/internal/repository"
	"github.com/crickstats/backend/pkg/crypto"
	"github.com/crickstats/backend/pkg/errorx"
	"github.com/crickstats/backend/pkg/testutil"
	"github.com/crickstats/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newAuthDomain() (*authDomain, repository.UserRepository) {
	userRepo := repository.NewUserRepository(&testutil.MockRedisClient{})
	return NewAuthDomain(userRepo, repository.NewPasswordResetRepository()), userRepo
}

func Test_authDomain_Register(t *testing.T) {
	ctx := testutil.MockContext()
	d, _ := newAuthDomain()

	resp, err := d.Register(ctx, &model.RegisterRequest{
		Username: "dhoni_forever",
		Email:    "dhoni_forever@example.com",
		Password: "Str0ngP@ss",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.EqualValues(t, entity.StartingTokens, resp.User.Tokens)
	require.True(t, strings.HasPrefix(resp.User.ReferralCode, "REF_"))

	info, err := xcontext.TokenEngine(ctx).Verify(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "dhoni_forever", info.Username)

	_, err = d.Register(ctx, &model.RegisterRequest{
		Username: "dhoni_forever",
		Email:    "another@example.com",
		Password: "Str0ngP@ss",
	})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.AlreadyExists, errx.Code)
}

func Test_authDomain_Register_referral(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d, userRepo := newAuthDomain()

	_, err := d.Register(ctx, &model.RegisterRequest{
		Username:     "new_fan",
		Email:        "new_fan@example.com",
		Password:     "Str0ngP@ss",
		ReferralCode: testutil.User1.ReferralCode,
	})
	require.NoError(t, err)

	referrer, err := userRepo.GetByID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.EqualValues(t, entity.StartingTokens+entity.ReferralBonus, referrer.Tokens)
	require.Equal(t, 1, referrer.ReferralCount)

	_, err = d.Register(ctx, &model.RegisterRequest{
		Username:     "another_fan",
		Email:        "another_fan@example.com",
		Password:     "Str0ngP@ss",
		ReferralCode: "REF_DOES_NOT_EXIST0",
	})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.NotFound, errx.Code)
}

func Test_authDomain_Login(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d, userRepo := newAuthDomain()

	resp, err := d.Login(ctx, &model.LoginRequest{
		Username: testutil.User1.Username,
		Password: testutil.FixturePassword,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, testutil.User1.Username, resp.User.Username)

	user, err := userRepo.GetByID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.True(t, user.LastLogin.Valid)

	_, err = d.Login(ctx, &model.LoginRequest{
		Username: testutil.User1.Username,
		Password: "wrong-password",
	})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Unauthenticated, errx.Code)

	_, err = d.Login(ctx, &model.LoginRequest{
		Username: "nobody",
		Password: testutil.FixturePassword,
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Unauthenticated, errx.Code)
}

func Test_authDomain_ForgotPassword(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d, _ := newAuthDomain()

	// A known and an unknown email answer identically.
	_, err := d.ForgotPassword(ctx, &model.ForgotPasswordRequest{Email: testutil.User1.Email})
	require.NoError(t, err)

	_, err = d.ForgotPassword(ctx, &model.ForgotPasswordRequest{Email: "ghost@example.com"})
	require.NoError(t, err)
}

func issueResetToken(ctx context.Context, t *testing.T, id, userID, token string, expiresAt time.Time) {
	t.Helper()

	err := repository.NewPasswordResetRepository().Create(ctx, &entity.PasswordReset{
		Base:      entity.Base{ID: id},
		UserID:    userID,
		Token:     crypto.SHA256([]byte(token)),
		ExpiresAt: expiresAt,
	})
	require.NoError(t, err)
}

func Test_authDomain_ResetPassword(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d, _ := newAuthDomain()

	issueResetToken(ctx, t, "reset1", testutil.User1.ID, "raw-token", time.Now().Add(time.Hour))

	_, err := d.ResetPassword(ctx, &model.ResetPasswordRequest{
		Token:    "raw-token",
		Password: "N3wP@ssword",
	})
	require.NoError(t, err)

	// The old password stops working, the new one logs in.
	_, err = d.Login(ctx, &model.LoginRequest{
		Username: testutil.User1.Username,
		Password: testutil.FixturePassword,
	})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Unauthenticated, errx.Code)

	_, err = d.Login(ctx, &model.LoginRequest{
		Username: testutil.User1.Username,
		Password: "N3wP@ssword",
	})
	require.NoError(t, err)

	// A token is single use.
	_, err = d.ResetPassword(ctx, &model.ResetPasswordRequest{
		Token:    "raw-token",
		Password: "An0therP@ss",
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)
}

func Test_authDomain_ResetPassword_expiredToken(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d, _ := newAuthDomain()

	issueResetToken(ctx, t, "reset2", testutil.User1.ID, "stale-token", time.Now().Add(-time.Minute))

	_, err := d.ResetPassword(ctx, &model.ResetPasswordRequest{
		Token:    "stale-token",
		Password: "N3wP@ssword",
	})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)

	// The stored password survives the failed attempt.
	_, err = d.Login(ctx, &model.LoginRequest{
		Username: testutil.User1.Username,
		Password: testutil.FixturePassword,
	})
	require.NoError(t, err)
}
