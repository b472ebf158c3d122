// Package guard gates navigation into protected screens. Guards check token
// presence only; token validity is the server's call and surfaces later as a
// 401 on the screen's own requests.
package guard

import "github.com/maueyecare/clinic/internal/session"

// Route names the navigation targets guards redirect to.
type Route string

const (
	RouteLogin Route = "/login"
	RouteHome  Route = "/"
)

// Decision is the outcome of evaluating a guard.
type Decision int

const (
	// Allow renders the protected content.
	Allow Decision = iota
	// Redirect sends the caller to Result.Target, remembering where they
	// came from for the post-login return.
	Redirect
	// Pending means the profile is still loading; render nothing and
	// re-evaluate when the session changes. Never a redirect, so a slow
	// profile fetch cannot flash-bounce an authorized user.
	Pending
	// Unauthorized means the profile loaded and its role is not allowed.
	Unauthorized
)

// Result carries the decision plus redirect bookkeeping.
type Result struct {
	Decision Decision
	Target   Route
	// From is the location the caller attempted, preserved across the login
	// redirect.
	From string
}

// Session is the read side of the session store that guards need.
type Session interface {
	Authenticated() bool
	Profile() *session.Profile
}

// Presence admits any caller holding an access token.
func Presence(s Session, from string) Result {
	if !s.Authenticated() {
		return Result{Decision: Redirect, Target: RouteLogin, From: from}
	}
	return Result{Decision: Allow}
}

// Role admits callers whose loaded profile carries one of the allowed roles.
// While the profile is loading the decision is Pending; once loaded, a role
// outside the set is an explicit Unauthorized with a home redirect target.
func Role(s Session, from string, allowed ...string) Result {
	if !s.Authenticated() {
		return Result{Decision: Redirect, Target: RouteLogin, From: from}
	}

	p := s.Profile()
	if p == nil {
		return Result{Decision: Pending}
	}

	if len(allowed) == 0 {
		return Result{Decision: Allow}
	}
	for _, role := range allowed {
		if p.Role == role {
			return Result{Decision: Allow}
		}
	}
	return Result{Decision: Unauthorized, Target: RouteHome, From: from}
}
