package domain

import (
	"github.com/crickstats/backend/internal/entity"
	"github.com/crickstats/backend/internal/model"
)

func convertUser(user *entity.User) model.User {
	if user == nil {
		return model.User{}
	}

	converted := model.User{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Tokens:        user.Tokens,
		ReferralCode:  user.ReferralCode,
		ReferralCount: user.ReferralCount,
		CreatedAt:     user.CreatedAt,
		IsActive:      user.IsActive,
	}

	if user.LastLogin.Valid {
		t := user.LastLogin.Time
		converted.LastLogin = &t
	}

	return converted
}
