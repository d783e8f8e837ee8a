package testutil

import (
	"context"

	"github.com/crickstats/backend/internal/entity"
	"github.com/crickstats/backend/internal/repository"
	"github.com/crickstats/backend/pkg/crypto"
)

// FixturePassword is the plain password of every fixture user.
const FixturePassword = "Str0ngP@ss"

var (
	User1 = &entity.User{
		Base:         entity.Base{ID: "user1"},
		Username:     "rohit_fan",
		Email:        "rohit_fan@example.com",
		Tokens:       entity.StartingTokens,
		IsActive:     true,
		ReferralCode: "REF_0000000000000001",
	}

	User2 = &entity.User{
		Base:         entity.Base{ID: "user2"},
		Username:     "kohli_stats",
		Email:        "kohli_stats@example.com",
		Tokens:       entity.StartingTokens,
		IsActive:     true,
		ReferralCode: "REF_0000000000000002",
	}
)

// CreateFixtureDb inserts the fixture users into the database of ctx.
func CreateFixtureDb(ctx context.Context) {
	passwordHash, err := crypto.HashPassword(FixturePassword)
	if err != nil {
		panic(err)
	}

	userRepo := repository.NewUserRepository(&MockRedisClient{})
	for _, user := range []*entity.User{User1, User2} {
		record := *user
		record.PasswordHash = passwordHash
		if err := userRepo.Create(ctx, &record); err != nil {
			panic(err)
		}
	}
}
