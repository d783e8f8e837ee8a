package main

import (
	"context"
	"net/http"

	"github.com/crickstats/backend/internal/domain/notification"
	"github.com/crickstats/backend/internal/middleware"
	"github.com/crickstats/backend/internal/model"
	"github.com/crickstats/backend/pkg/authenticator"
	"github.com/crickstats/backend/pkg/router"
	"github.com/crickstats/backend/pkg/xcontext"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, s.configs)
	ctx = xcontext.WithLogger(ctx, s.logger)

	s.loadRedis(ctx)
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	s.server = &http.Server{
		Addr: s.configs.ApiServer.Address(),
		Handler: cors.New(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler(s.router.Handler()),
	}

	s.logger.Infof("Starting server on %s", s.configs.ApiServer.Address())
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}

	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.db, s.configs, s.logger)
	s.router.AddCloser(middleware.LogRequest("/health"))

	// Public API.
	router.POST(s.router, "/users/register", s.authDomain.Register)
	router.POST(s.router, "/users/login", s.authDomain.Login)
	router.POST(s.router, "/users/forgot-password", s.authDomain.ForgotPassword)
	router.POST(s.router, "/users/reset-password", s.authDomain.ResetPassword)
	router.GET(s.router, "/health", healthCheck)

	// The popup widget assets (wheel script, styles) are served from here.
	s.router.Static("/static/", "./web")

	// These following APIs need authentication.
	authRouter := s.router.Branch()
	authRouter.Before(middleware.Authenticate())
	{
		// User API
		router.GET(authRouter, "/users/{username}", s.userDomain.GetUser)
		router.GET(authRouter, "/users/{username}/balance", s.userDomain.GetBalance)

		// Spin wheel API
		router.GET(authRouter, "/users/{username}/spin_status", s.spinWheelDomain.GetSpinStatus)
		router.POST(authRouter, "/users/{username}/spin", s.spinWheelDomain.Spin)
		router.POST(authRouter, "/spin-wheel/claim-reward", s.spinWheelDomain.ClaimReward)
	}

	s.notificationHub = notification.NewHub(
		s.bus,
		authenticator.NewTokenEngine[model.AccessToken](s.configs.Auth.AccessToken),
	)
	s.router.HandleFunc("GET /events", s.notificationHub.ServeWS)
}

type healthCheckRequest struct{}
type healthCheckResponse struct{}

func healthCheck(context.Context, *healthCheckRequest) (*healthCheckResponse, error) {
	return &healthCheckResponse{}, nil
}
