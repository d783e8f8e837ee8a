package spinwheel

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/crickstats/backend/internal/model"
	"github.com/crickstats/backend/pkg/api"
	"github.com/crickstats/backend/pkg/xcontext"
)

const sessionKey = "session"

type sessionRecord struct {
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
}

// Session holds the authenticated user of the widget. The access token is
// persisted so a restart does not log the user out.
type Session struct {
	gen   api.Generator
	store Store

	mutex       sync.RWMutex
	username    string
	accessToken string
}

func NewSession(gen api.Generator, store Store) *Session {
	return &Session{gen: gen, store: store}
}

// Restore loads a previously persisted session, if any.
func (s *Session) Restore(ctx context.Context) error {
	value, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}

		return err
	}

	var record sessionRecord
	if err := json.Unmarshal(value, &record); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.username = record.Username
	s.accessToken = record.AccessToken
	return nil
}

func (s *Session) Login(ctx context.Context, username, password string) (*model.User, error) {
	resp, err := s.gen.New("/users/login").
		Body(api.JSONBody{"username": username, "password": password}).
		POST(ctx)
	if err != nil {
		return nil, err
	}

	var out model.LoginResponse
	if err := parseEnvelope(resp, &out); err != nil {
		return nil, err
	}

	s.save(ctx, out.User.Username, out.AccessToken)
	return &out.User, nil
}

func (s *Session) Register(
	ctx context.Context, username, email, password, referralCode string,
) (*model.User, error) {
	resp, err := s.gen.New("/users/register").
		Body(api.JSONBody{
			"username":      username,
			"email":         email,
			"password":      password,
			"referral_code": referralCode,
		}).
		POST(ctx)
	if err != nil {
		return nil, err
	}

	var out model.RegisterResponse
	if err := parseEnvelope(resp, &out); err != nil {
		return nil, err
	}

	s.save(ctx, out.User.Username, out.AccessToken)
	return &out.User, nil
}

func (s *Session) Logout(ctx context.Context) {
	s.mutex.Lock()
	s.username = ""
	s.accessToken = ""
	s.mutex.Unlock()

	if err := s.store.Delete(ctx, sessionKey); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot delete session: %v", err)
	}
}

func (s *Session) Username() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.username
}

func (s *Session) Token() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.accessToken
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func (s *Session) save(ctx context.Context, username, token string) {
	s.mutex.Lock()
	s.username = username
	s.accessToken = token
	s.mutex.Unlock()

	value, err := json.Marshal(sessionRecord{Username: username, AccessToken: token})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot marshal session: %v", err)
		return
	}

	if err := s.store.Set(ctx, sessionKey, value); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot persist session: %v", err)
	}
}
