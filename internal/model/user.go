package model

import "time"

type User struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Tokens        int64      `json:"tokens"`
	ReferralCode  string     `json:"referral_code"`
	ReferralCount int        `json:"referral_count"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	IsActive      bool       `json:"is_active"`
}

type GetUserRequest struct {
	Username string `json:"username"`
}

type GetUserResponse struct {
	User User `json:"user"`
}

type GetBalanceRequest struct {
	Username string `json:"username"`
}

type GetBalanceResponse struct {
	Tokens int64 `json:"tokens"`
}
