package middleware

import (
	"context"
	"strings"

	"github.com/crickstats/backend/pkg/errorx"
	"github.com/crickstats/backend/pkg/router"
	"github.com/crickstats/backend/pkg/xcontext"
)

// Authenticate verifies the access token of the request and records the
// caller's user id in the context.
func Authenticate() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		token := getAccessToken(ctx)
		if token == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		info, err := xcontext.TokenEngine(ctx).Verify(token)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestUserID(ctx, info.ID), nil
	}
}

func getAccessToken(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return ""
	}

	if token, ok := strings.CutPrefix(req.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}

	cfg := xcontext.Configs(ctx).Auth.AccessToken
	if cookie, err := req.Cookie(cfg.Name); err == nil {
		return cookie.Value
	}

	return ""
}
