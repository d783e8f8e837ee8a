package main

import (
	"context"
	"net/http"

	"github.com/crickstats/backend/config"
	"github.com/crickstats/backend/internal/domain"
	"github.com/crickstats/backend/internal/domain/notification"
	"github.com/crickstats/backend/internal/entity"
	"github.com/crickstats/backend/internal/repository"
	"github.com/crickstats/backend/pkg/logger"
	"github.com/crickstats/backend/pkg/pubsub"
	"github.com/crickstats/backend/pkg/router"
	"github.com/crickstats/backend/pkg/xcontext"
	"github.com/crickstats/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App

	configs config.Configs
	logger  logger.Logger

	db          *gorm.DB
	redisClient xredis.Client
	bus         *pubsub.InMemoryBus

	userRepo          repository.UserRepository
	spinRewardRepo    repository.SpinRewardRepository
	passwordResetRepo repository.PasswordResetRepository

	authDomain      domain.AuthDomain
	userDomain      domain.UserDomain
	spinWheelDomain domain.SpinWheelDomain

	notificationHub *notification.Hub

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig() {
	var err error
	s.configs, err = config.Load()
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadLogger() {
	level := logger.INFO
	if s.configs.Env == "local" {
		level = logger.DEBUG
	}

	s.logger = logger.NewLogger(level)
}

func (s *srv) loadDatabase() {
	var err error
	s.db, err = gorm.Open(mysql.Open(s.configs.Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRedis(ctx context.Context) {
	var err error
	s.redisClient, err = xredis.NewClient(ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository(s.redisClient)
	s.spinRewardRepo = repository.NewSpinRewardRepository()
	s.passwordResetRepo = repository.NewPasswordResetRepository()
}

func (s *srv) loadDomains() {
	s.bus = pubsub.NewInMemoryBus()
	s.authDomain = domain.NewAuthDomain(s.userRepo, s.passwordResetRepo)
	s.userDomain = domain.NewUserDomain(s.userRepo)
	s.spinWheelDomain = domain.NewSpinWheelDomain(s.userRepo, s.spinRewardRepo, s.bus)
}

func (s *srv) migrate(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()

	ctx := xcontext.WithDB(context.Background(), s.db)
	ctx = xcontext.WithLogger(ctx, s.logger)
	return entity.MigrateTable(ctx)
}
