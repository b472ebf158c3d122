package guard

import (
	"testing"

	"github.com/maueyecare/clinic/internal/session"
)

type fakeSession struct {
	token   string
	profile *session.Profile
}

func (f *fakeSession) Authenticated() bool       { return f.token != "" }
func (f *fakeSession) Profile() *session.Profile { return f.profile }

func TestPresence_NoTokenRedirectsToLogin(t *testing.T) {
	res := Presence(&fakeSession{}, "/patients")
	if res.Decision != Redirect {
		t.Fatalf("decision = %v, want Redirect", res.Decision)
	}
	if res.Target != RouteLogin {
		t.Errorf("target = %q, want /login", res.Target)
	}
	if res.From != "/patients" {
		t.Errorf("attempted location not preserved: %q", res.From)
	}
}

func TestPresence_WithTokenAllows(t *testing.T) {
	res := Presence(&fakeSession{token: "tok"}, "/patients")
	if res.Decision != Allow {
		t.Errorf("decision = %v, want Allow", res.Decision)
	}
}

func TestRole_NoTokenRedirectsToLogin(t *testing.T) {
	res := Role(&fakeSession{}, "/settings", session.RoleAdmin)
	if res.Decision != Redirect || res.Target != RouteLogin {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestRole_ProfileLoadingIsPendingNotRedirect(t *testing.T) {
	res := Role(&fakeSession{token: "tok"}, "/settings", session.RoleAdmin)
	if res.Decision != Pending {
		t.Errorf("decision = %v, want Pending while profile loads", res.Decision)
	}
	if res.Target != "" {
		t.Errorf("pending must not carry a redirect target, got %q", res.Target)
	}
}

func TestRole_AllowedRole(t *testing.T) {
	s := &fakeSession{token: "tok", profile: &session.Profile{Role: session.RoleDoctor}}
	res := Role(s, "/prescriptions", session.RoleAdmin, session.RoleDoctor)
	if res.Decision != Allow {
		t.Errorf("decision = %v, want Allow", res.Decision)
	}
}

func TestRole_DisallowedRoleIsUnauthorized(t *testing.T) {
	s := &fakeSession{token: "tok", profile: &session.Profile{Role: session.RoleStaff}}
	res := Role(s, "/settings", session.RoleAdmin)
	if res.Decision != Unauthorized {
		t.Fatalf("decision = %v, want Unauthorized", res.Decision)
	}
	if res.Target != RouteHome {
		t.Errorf("target = %q, want home", res.Target)
	}
}

func TestRole_EmptyAllowedSetAdmitsAnyLoadedProfile(t *testing.T) {
	s := &fakeSession{token: "tok", profile: &session.Profile{Role: "optician"}}
	res := Role(s, "/showcase")
	if res.Decision != Allow {
		t.Errorf("decision = %v, want Allow for empty role set", res.Decision)
	}
}
