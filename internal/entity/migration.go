package entity

import (
	"context"

	"github.com/crickstats/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&SpinReward{},
		&PasswordReset{},
	)
}
