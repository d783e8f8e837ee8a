package router

import (
	"context"
	"net/http"

	"github.com/crickstats/backend/config"
	"github.com/crickstats/backend/internal/model"
	"github.com/crickstats/backend/pkg/authenticator"
	"github.com/crickstats/backend/pkg/logger"
	"github.com/crickstats/backend/pkg/xcontext"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It can replace the request context
// by returning a non-nil one.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the handler and all After middlewares, even when the
// handler failed.
type CloserFunc func(ctx context.Context)

type Router struct {
	mux *http.ServeMux

	cfg    config.Configs
	logger logger.Logger
	db     *gorm.DB

	accessTokenEngine authenticator.TokenEngine[model.AccessToken]
	sessionStore      sessions.Store

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		cfg:               cfg,
		logger:            logger,
		db:                db,
		accessTokenEngine: authenticator.NewTokenEngine[model.AccessToken](cfg.Auth.AccessToken),
		sessionStore:      sessions.NewCookieStore([]byte(cfg.Session.Secret)),
	}
}

// Branch returns a new router sharing the same mux but with an independent
// middleware chain, so route groups can verify authentication differently.
func (r *Router) Branch() *Router {
	branch := *r
	branch.befores = append([]MiddlewareFunc{}, r.befores...)
	branch.afters = append([]MiddlewareFunc{}, r.afters...)
	branch.closers = append([]CloserFunc{}, r.closers...)
	return &branch
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

// HandleFunc registers a raw handler, bypassing the request binding and the
// response envelope. Websocket endpoints need this since the connection is
// hijacked.
func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.mux.HandleFunc(pattern, handler)
}

func (r *Router) Static(pattern, root string) {
	r.mux.Handle(pattern, http.FileServer(http.Dir(root)))
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc("GET "+pattern, wrapHandler(r, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc("POST "+pattern, wrapHandler(r, handler))
}

func wrapHandler[Request, Response any](
	router *Router, handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	// Capture the middleware chain at registration time; later Branch calls
	// must not affect already registered routes.
	befores := append([]MiddlewareFunc{}, router.befores...)
	afters := append([]MiddlewareFunc{}, router.afters...)
	closers := append([]CloserFunc{}, router.closers...)

	return func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		ctx = xcontext.WithConfigs(ctx, router.cfg)
		ctx = xcontext.WithLogger(ctx, router.logger)
		ctx = xcontext.WithDB(ctx, router.db)
		ctx = xcontext.WithHTTPRequest(ctx, req)
		ctx = xcontext.WithHTTPWriter(ctx, w)
		ctx = xcontext.WithTokenEngine(ctx, router.accessTokenEngine)
		ctx = xcontext.WithSessionStore(ctx, router.sessionStore)
		ctx = xcontext.WithResultHolder(ctx)

		func() {
			var boundReq Request
			if err := bindRequest(req, &boundReq); err != nil {
				xcontext.SetError(ctx, err)
				return
			}

			for _, middleware := range befores {
				newCtx, err := middleware(ctx)
				if err != nil {
					xcontext.SetError(ctx, err)
					return
				}

				if newCtx != nil {
					ctx = newCtx
				}
			}

			resp, err := handler(ctx, &boundReq)
			if err != nil {
				xcontext.SetError(ctx, err)
				return
			}

			xcontext.SetResponse(ctx, resp)

			for _, middleware := range afters {
				newCtx, err := middleware(ctx)
				if err != nil {
					xcontext.SetError(ctx, err)
					return
				}

				if newCtx != nil {
					ctx = newCtx
				}
			}
		}()

		handleResponse(ctx)
		for _, closer := range closers {
			closer(ctx)
		}
	}
}
