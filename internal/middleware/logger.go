package middleware

import (
	"context"

	"github.com/crickstats/backend/pkg/router"
	"github.com/crickstats/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
)

// LogRequest logs every finished request except the excluded paths.
func LogRequest(excludedPaths ...string) router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		if req == nil || slices.Contains(excludedPaths, req.URL.Path) {
			return
		}

		if err := xcontext.GetError(ctx); err != nil {
			xcontext.Logger(ctx).Errorf("%s %s | %v", req.Method, req.URL.Path, err)
			return
		}

		xcontext.Logger(ctx).Infof("%s %s", req.Method, req.URL.Path)
	}
}
