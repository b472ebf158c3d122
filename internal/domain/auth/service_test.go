package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maueyecare/clinic/internal/api"
	"github.com/maueyecare/clinic/internal/session"
)

func newService(t *testing.T, h http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := api.NewClient(srv.URL, 5*time.Second, api.StaticToken(""), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewService(c)
}

func TestLogin_PasswordGrantForm(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "password" || r.PostForm.Get("username") != "doc@x" {
			t.Errorf("unexpected form %v", r.PostForm)
		}
		w.Write([]byte(`{"access_token": "acc", "refresh_token": "ref"}`))
	})

	pair, err := svc.Login(context.Background(), "doc@x", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.AccessToken != "acc" || pair.RefreshToken != "ref" {
		t.Errorf("unexpected pair %+v", pair)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Incorrect username or password"}`))
	})

	_, err := svc.Login(context.Background(), "doc@x", "wrong")
	if !api.IsUnauthorized(err) {
		t.Errorf("expected 401 error, got %v", err)
	}
}

func TestLogin_MissingAccessToken(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	if _, err := svc.Login(context.Background(), "doc@x", "pw"); err == nil {
		t.Error("expected error for empty token response")
	}
}

func TestFetchProfile_UsesExplicitToken(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer the-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"id": 1, "email": "doc@x", "full_name": "Dr X", "role": "doctor"}`))
	})

	p, err := svc.FetchProfile(context.Background(), "the-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Role != session.RoleDoctor || p.Email != "doc@x" {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestBootstrap(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/bootstrap" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"created": true, "message": "Default user created."}`))
	})

	res, err := svc.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Created {
		t.Errorf("unexpected result %+v", res)
	}
}
