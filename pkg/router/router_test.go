package router

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crickstats/backend/config"
	"github.com/crickstats/backend/pkg/errorx"
	"github.com/crickstats/backend/pkg/logger"
	"github.com/crickstats/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Username string `json:"username"`
	Points   int64  `json:"points"`
}

type echoResponse struct {
	Username string `json:"username"`
	Points   int64  `json:"points"`
}

func newTestRouter() *Router {
	return New(nil, config.Configs{}, logger.NewLogger(logger.ERROR))
}

func doRequest(t *testing.T, r *Router, method, target, body string) (int64, string, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	var envelope struct {
		Code  int64          `json:"code"`
		Error string         `json:"error"`
		Data  map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Code, envelope.Error, envelope.Data
}

func TestRouter_bindsBodyQueryAndPath(t *testing.T) {
	r := newTestRouter()
	POST(r, "/users/{username}/echo", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{Username: req.Username, Points: req.Points}, nil
	})

	// The path wildcard overrides whatever the body says.
	code, _, data := doRequest(t, r, "POST", "/users/rohit_fan/echo",
		`{"username":"someone_else","points":50}`)
	require.EqualValues(t, 0, code)
	require.Equal(t, "rohit_fan", data["username"])
	require.EqualValues(t, 50, data["points"])
}

func TestRouter_errorEnvelope(t *testing.T) {
	r := newTestRouter()
	POST(r, "/fail", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return nil, errorx.New(errorx.QuotaExceeded, "No spins left today")
	})
	POST(r, "/boom", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return nil, context.DeadlineExceeded
	})

	code, errMsg, _ := doRequest(t, r, "POST", "/fail", "")
	require.EqualValues(t, errorx.QuotaExceeded, code)
	require.Equal(t, "No spins left today", errMsg)

	// Unexpected errors are masked behind the generic failure.
	code, errMsg, _ = doRequest(t, r, "POST", "/boom", "")
	require.EqualValues(t, errorx.Unknown.Code, code)
	require.Equal(t, errorx.Unknown.Message, errMsg)
}

func TestRouter_middlewareChain(t *testing.T) {
	r := newTestRouter()

	var closed bool
	r.AddCloser(func(ctx context.Context) { closed = true })

	guarded := r.Branch()
	guarded.Before(func(ctx context.Context) (context.Context, error) {
		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	})

	POST(guarded, "/private", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		t.Fatal("handler must not run after a failed middleware")
		return nil, nil
	})
	POST(r, "/public", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{}, nil
	})

	code, _, _ := doRequest(t, r, "POST", "/private", "")
	require.EqualValues(t, errorx.Unauthenticated, code)
	require.True(t, closed)

	// The branch middleware must not leak into the parent router.
	code, _, _ = doRequest(t, r, "POST", "/public", "")
	require.EqualValues(t, 0, code)
}

func TestRouter_requestUserIDThroughMiddleware(t *testing.T) {
	r := newTestRouter()
	r.Before(func(ctx context.Context) (context.Context, error) {
		return xcontext.WithRequestUserID(ctx, "user1"), nil
	})

	POST(r, "/whoami", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{Username: xcontext.RequestUserID(ctx)}, nil
	})

	code, _, data := doRequest(t, r, "POST", "/whoami", "")
	require.EqualValues(t, 0, code)
	require.Equal(t, "user1", data["username"])
}
