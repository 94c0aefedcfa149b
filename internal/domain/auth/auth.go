// Package auth implements mock authentication against the demo catalog
// service: the remote endpoint issues a real token, while the user profile
// is synthesized locally the way the demo storefront expects.
package auth

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/averku/storefront/internal/kv"
)

// ErrInvalidCredentials is returned when the catalog rejects the
// username/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is the authenticated user profile for one session.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

// Credentials is a username/password pair.
type Credentials struct {
	Username string
	Password string
}

// Session is the result of a successful login.
type Session struct {
	Token string
	User  User
}

// TokenIssuer exchanges credentials for a bearer token. The production
// implementation is the fakestore client's /auth/login call.
type TokenIssuer interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Service manages the authentication state of one session, persisting the
// token and user profile through the kv capability.
type Service struct {
	issuer   TokenIssuer
	store    kv.Store
	tokenKey string
	userKey  string
	lg       *zap.Logger
}

// NewService creates an auth Service persisting under keyPrefix.
func NewService(issuer TokenIssuer, store kv.Store, keyPrefix string, lg *zap.Logger) *Service {
	return &Service{
		issuer:   issuer,
		store:    store,
		tokenKey: keyPrefix + ":token",
		userKey:  keyPrefix + ":user",
		lg:       lg,
	}
}

// Login authenticates against the remote service and stores the session.
// The demo service only issues tokens, so the user profile is built from
// the username. Persistence failures are logged, not surfaced: the caller
// still gets a working session for the current request.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	token, err := s.issuer.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	user := User{
		ID:        1,
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "John",
		LastName:  "Doe",
	}

	if err := s.store.Set(ctx, s.tokenKey, token); err != nil {
		s.lg.Error("token write failed", zap.Error(err))
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, errors.Wrap(err, "marshal user")
	}
	if err := s.store.Set(ctx, s.userKey, string(raw)); err != nil {
		s.lg.Error("user write failed", zap.Error(err))
	}

	return &Session{Token: token, User: user}, nil
}

// Logout discards the stored token and user profile.
func (s *Service) Logout(ctx context.Context) {
	if err := s.store.Delete(ctx, s.tokenKey); err != nil {
		s.lg.Warn("token delete failed", zap.Error(err))
	}
	if err := s.store.Delete(ctx, s.userKey); err != nil {
		s.lg.Warn("user delete failed", zap.Error(err))
	}
}

// Token returns the stored token, if any.
func (s *Service) Token(ctx context.Context) (string, bool) {
	token, ok, err := s.store.Get(ctx, s.tokenKey)
	if err != nil {
		s.lg.Warn("token read failed", zap.Error(err))
		return "", false
	}
	return token, ok && token != ""
}

// IsAuthenticated reports whether the session holds a token.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.Token(ctx)
	return ok
}

// CurrentUser returns the stored user profile, or nil when the session is
// not authenticated or the stored profile cannot be read back.
func (s *Service) CurrentUser(ctx context.Context) *User {
	raw, ok, err := s.store.Get(ctx, s.userKey)
	if err != nil {
		s.lg.Warn("user read failed", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.lg.Warn("stored user is not decodable", zap.Error(err))
		return nil
	}
	return &user
}

// DemoCredentials lists accounts known to the demo catalog service,
// useful for manual testing against the real API.
func DemoCredentials() []Credentials {
	return []Credentials{
		{Username: "mor_2314", Password: "83r5^_"},
		{Username: "kevinryan", Password: "kev02937@"},
		{Username: "donero", Password: "ewedon"},
		{Username: "derek", Password: "jklg*_56"},
	}
}
