package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Known roles. The backend may return others; guards treat role membership as
// plain string comparison.
const (
	RoleAdmin  = "admin"
	RoleDoctor = "doctor"
	RoleStaff  = "staff"
)

// Profile is the authenticated user as reported by /api/auth/me. Read-only to
// the client; refetched on every token change.
type Profile struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// ProfileFetcher resolves the profile for a given access token. The token is
// passed explicitly so an in-flight fetch keeps using the token it was
// started with even after the store has moved on.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// ProfileFetcherFunc adapts a function to the ProfileFetcher interface.
type ProfileFetcherFunc func(ctx context.Context, accessToken string) (*Profile, error)

func (f ProfileFetcherFunc) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	return f(ctx, accessToken)
}

// Store is the single-writer session register: tokens plus resolved profile.
// Writers go through Login/Logout; everything else reads. Each token change
// bumps a generation counter, and a profile fetch only commits its result if
// its generation is still current — a stale fetch resolving late can never
// overwrite a newer token's profile.
type Store struct {
	mu      sync.RWMutex
	access  string
	refresh string
	profile *Profile
	gen     uint64

	keyring Keyring
	fetcher ProfileFetcher
	log     zerolog.Logger

	subs []func()

	fetchTimeout time.Duration
	// closed when the most recent profile fetch settles; replaced per fetch
	fetchDone chan struct{}
}

func NewStore(keyring Keyring, fetcher ProfileFetcher, log zerolog.Logger) *Store {
	done := make(chan struct{})
	close(done)
	return &Store{
		keyring:      keyring,
		fetcher:      fetcher,
		log:          log,
		fetchTimeout: 10 * time.Second,
		fetchDone:    done,
	}
}

// Restore loads tokens from the keyring, the reload-from-durable-storage path.
// A loaded access token triggers a profile fetch like any other token change.
func (s *Store) Restore() error {
	access, refresh, err := s.keyring.Load()
	if err != nil {
		return err
	}
	if access == "" {
		return nil
	}
	s.setTokens(access, refresh)
	return nil
}

// Login stores both tokens durably and in memory, then kicks off the profile
// fetch. The fetch is a side effect, not part of login's contract: Login
// returns once the tokens are persisted.
func (s *Store) Login(access, refresh string) error {
	if err := s.keyring.Save(access, refresh); err != nil {
		return err
	}
	s.setTokens(access, refresh)
	return nil
}

// Logout clears tokens and profile from memory and durable storage,
// regardless of prior state.
func (s *Store) Logout() error {
	err := s.keyring.Clear()

	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.profile = nil
	s.gen++
	s.mu.Unlock()

	s.notify()
	return err
}

func (s *Store) setTokens(access, refresh string) {
	s.mu.Lock()
	s.access = access
	s.refresh = refresh
	s.profile = nil
	s.gen++
	gen := s.gen
	done := make(chan struct{})
	s.fetchDone = done
	s.mu.Unlock()

	s.notify()
	go s.fetchProfile(gen, access, done)
}

// fetchProfile resolves the profile for the token captured at fetch start.
// Any failure leaves profile absent without surfacing an error; an expired
// token is not even sent to the server.
func (s *Store) fetchProfile(gen uint64, access string, done chan struct{}) {
	defer close(done)

	var profile *Profile
	if tokenUsable(access) {
		ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
		defer cancel()

		p, err := s.fetcher.FetchProfile(ctx, access)
		if err != nil {
			s.log.Debug().Err(err).Msg("profile fetch failed")
		} else {
			profile = p
		}
	}

	s.mu.Lock()
	if s.gen != gen {
		// A newer token superseded this fetch; discard the result.
		s.mu.Unlock()
		return
	}
	s.profile = profile
	s.mu.Unlock()

	s.notify()
}

// tokenUsable reports whether the access token is worth presenting to the
// identity endpoint. The signature is the server's to verify; locally we only
// reject tokens that are already past their exp claim. Opaque (non-JWT)
// tokens pass through.
func tokenUsable(access string) bool {
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(access, &claims)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.After(time.Now())
}

// AccessToken implements api.TokenSource.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// Profile returns the resolved profile, or nil while absent or still loading.
func (s *Store) Profile() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Authenticated reports whether an access token is present. Token validity is
// the server's call; guards check presence only.
func (s *Store) Authenticated() bool {
	return s.AccessToken() != ""
}

// Subscribe registers a callback invoked after every state change. Callbacks
// run outside the store lock and must not call writers reentrantly.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}

// WaitProfile blocks until the most recent profile fetch has settled or the
// context is done. CLI commands call this before role checks so a guard sees
// a loaded profile rather than the transient loading state.
func (s *Store) WaitProfile(ctx context.Context) error {
	s.mu.RLock()
	done := s.fetchDone
	s.mu.RUnlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
