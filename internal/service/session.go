// Package service contains the console's controllers: the session
// lifecycle, the generic paged collection, the detail fetcher, and the
// eco-location form. Handlers drive these controllers and render their
// state; the controllers own all transitions and talk to the platform
// API through narrow interfaces so tests can substitute fakes.
package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/safastep/console/internal/domain"
)

// SessionStatus describes the authentication lifecycle.
type SessionStatus int

const (
	StatusUnauthenticated SessionStatus = iota
	StatusVerifying
	StatusAuthenticated
	StatusVerificationFailed
)

func (s SessionStatus) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusVerifying:
		return "verifying"
	case StatusAuthenticated:
		return "authenticated"
	case StatusVerificationFailed:
		return "verification_failed"
	default:
		return "unknown"
	}
}

// Authenticator is the slice of the platform API the session needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (domain.Identity, error)
	Verify(ctx context.Context, token string) error
}

// IdentityStore persists the identity triple between sessions.
// Satisfied by session.Store implementations.
type IdentityStore interface {
	Load() (domain.Identity, bool)
	Save(identity domain.Identity) error
	Clear()
}

// Session owns the authentication state machine.
//
// Transitions:
//
//	Unauthenticated -> Verifying -> {Authenticated, VerificationFailed}
//	VerificationFailed -> Unauthenticated (recovered by returning to login)
//	Authenticated -> Unauthenticated (logout)
//
// A stored token never short-circuits into Authenticated: only a
// successful login or a successful verify call reaches that state.
type Session struct {
	auth   Authenticator
	store  IdentityStore
	logger *slog.Logger

	mu       sync.Mutex
	status   SessionStatus
	identity domain.Identity
}

// NewSession creates a Session in the Unauthenticated state.
func NewSession(auth Authenticator, store IdentityStore, logger *slog.Logger) *Session {
	return &Session{
		auth:   auth,
		store:  store,
		logger: logger,
		status: StatusUnauthenticated,
	}
}

// Status returns the current lifecycle state.
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Identity returns the confirmed identity. ok is false unless the
// session is Authenticated.
func (s *Session) Identity() (domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusAuthenticated {
		return domain.Identity{}, false
	}
	return s.identity, true
}

// VerifyOnStartup checks whether a persisted identity is still valid.
//
// With no stored token it settles on Unauthenticated without any network
// call. With a stored token it asks the backend to confirm it; any
// rejection or transport failure clears the persisted identity as a
// group and settles on VerificationFailed. That state is recoverable:
// the caller returns the administrator to the login screen rather than
// surfacing an error.
func (s *Session) VerifyOnStartup(ctx context.Context) SessionStatus {
	identity, ok := s.store.Load()
	if !ok {
		s.transition(StatusUnauthenticated, domain.Identity{})
		return StatusUnauthenticated
	}

	s.transition(StatusVerifying, domain.Identity{})

	if err := s.auth.Verify(ctx, identity.Token); err != nil {
		s.logger.Info("stored token rejected, forcing logout",
			"username", identity.Username,
			"code", domain.ErrorCode(err),
		)
		s.store.Clear()
		s.transition(StatusVerificationFailed, domain.Identity{})
		return StatusVerificationFailed
	}

	s.transition(StatusAuthenticated, identity)
	return StatusAuthenticated
}

// Login authenticates with the backend and, on success, persists the
// identity triple as a group. On failure nothing is persisted and the
// session stays Unauthenticated; the returned error carries the
// server-provided message when there is one.
func (s *Session) Login(ctx context.Context, username, password string) error {
	const op = "session.login"

	if username == "" {
		return domain.Invalid(op, "Username is required")
	}
	if password == "" {
		return domain.Invalid(op, "Password is required")
	}

	identity, err := s.auth.Login(ctx, username, password)
	if err != nil {
		s.transition(StatusUnauthenticated, domain.Identity{})
		return err
	}
	if !identity.Valid() {
		// A success envelope without a token is a backend bug; do not
		// enter Authenticated on it.
		s.transition(StatusUnauthenticated, domain.Identity{})
		return domain.Errorf(domain.EINTERNAL, op, "login response carried no token")
	}

	if err := s.store.Save(identity); err != nil {
		s.transition(StatusUnauthenticated, domain.Identity{})
		return domain.Internal(err, op, "failed to persist session")
	}

	s.transition(StatusAuthenticated, identity)
	s.logger.Info("admin logged in", "username", identity.Username, "role", identity.Role)
	return nil
}

// Logout clears all persisted identity fields synchronously. No backend
// call is made; the token model is stateless and the API exposes no
// revocation endpoint.
func (s *Session) Logout() {
	s.store.Clear()
	s.transition(StatusUnauthenticated, domain.Identity{})
	s.logger.Debug("admin logged out")
}

func (s *Session) transition(status SessionStatus, identity domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.identity = identity
}
