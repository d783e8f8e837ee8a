package entity

import "time"

type PasswordReset struct {
	Base

	UserID string
	User   User `gorm:"foreignKey:UserID"`

	Token     string `gorm:"unique"`
	ExpiresAt time.Time
	Used      bool
}
