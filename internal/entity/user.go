package entity

import (
	"database/sql"
)

type User struct {
	Base

	Username     string `redis:"username" gorm:"unique"`
	Email        string `redis:"email" gorm:"unique"`
	PasswordHash string `redis:"password_hash"`

	Tokens   int64 `redis:"tokens"`
	IsActive bool  `redis:"is_active" gorm:"default:true"`

	LastLogin sql.NullTime `redis:"last_login"`

	ReferralCode  string `redis:"referral_code" gorm:"unique"`
	ReferralCount int    `redis:"referral_count"`

	// Daily spin tracking. SpinDate holds the day key (YYYY-MM-DD) the
	// counter belongs to; a different key means the counter is stale and
	// must be lazily reset before use.
	SpinCount      int            `redis:"spin_count"`
	SpinDate       sql.NullString `redis:"spin_date"`
	SpinLastReward sql.NullInt64  `redis:"spin_last_reward"`
}

// StartingTokens is the balance granted on registration; ReferralBonus is
// credited to the referrer when a new user signs up with their code.
const (
	StartingTokens = 100
	ReferralBonus  = 10
)
