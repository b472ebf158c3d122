package auth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/maueyecare/clinic/internal/api"
	"github.com/maueyecare/clinic/internal/session"
)

// TokenPair is the login response.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// BootstrapResult is the bootstrap response. Created is false when the
// default user already existed.
type BootstrapResult struct {
	Created bool   `json:"created"`
	Message string `json:"message"`
}

// Service covers the auth endpoints: login, identity, bootstrap.
type Service struct {
	c *api.Client
}

func NewService(c *api.Client) *Service {
	return &Service{c: c}
}

// Login exchanges credentials for a token pair. The endpoint takes the
// OAuth2 password-grant form encoding.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("grant_type", "password")

	var pair TokenPair
	if err := s.c.PostForm(ctx, "/api/auth/login", form, &pair); err != nil {
		return nil, err
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("login response missing access_token")
	}
	return &pair, nil
}

// FetchProfile resolves the profile for an explicit access token. Implements
// session.ProfileFetcher.
func (s *Service) FetchProfile(ctx context.Context, accessToken string) (*session.Profile, error) {
	var p session.Profile
	if err := s.c.WithToken(accessToken).Get(ctx, "/api/auth/me", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Bootstrap asks the backend to ensure the default doctor account exists.
func (s *Service) Bootstrap(ctx context.Context) (*BootstrapResult, error) {
	var res BootstrapResult
	if err := s.c.Post(ctx, "/api/auth/bootstrap", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
