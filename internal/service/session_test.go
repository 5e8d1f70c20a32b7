package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/safastep/console/internal/domain"
	"github.com/safastep/console/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAuth struct {
	loginIdentity domain.Identity
	loginErr      error
	verifyErr     error

	loginCalls  int
	verifyCalls int
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (domain.Identity, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return domain.Identity{}, f.loginErr
	}
	return f.loginIdentity, nil
}

func (f *fakeAuth) Verify(ctx context.Context, token string) error {
	f.verifyCalls++
	return f.verifyErr
}

func TestVerifyOnStartupWithoutToken(t *testing.T) {
	auth := &fakeAuth{}
	sess := NewSession(auth, session.NewMemoryStore(), testLogger())

	status := sess.VerifyOnStartup(context.Background())

	if status != StatusUnauthenticated {
		t.Errorf("expected unauthenticated, got %v", status)
	}
	if auth.verifyCalls != 0 {
		t.Errorf("expected no verify call without a stored token, got %d", auth.verifyCalls)
	}
}

func TestVerifyOnStartupValidToken(t *testing.T) {
	auth := &fakeAuth{}
	identity := domain.Identity{Token: "tok", Username: "admin", Role: "admin"}
	store := session.NewMemoryStoreWith(identity)
	sess := NewSession(auth, store, testLogger())

	status := sess.VerifyOnStartup(context.Background())

	if status != StatusAuthenticated {
		t.Fatalf("expected authenticated, got %v", status)
	}
	got, ok := sess.Identity()
	if !ok || got != identity {
		t.Errorf("expected identity %+v, got %+v (ok=%v)", identity, got, ok)
	}
}

func TestVerifyOnStartupRejectedTokenClearsStore(t *testing.T) {
	auth := &fakeAuth{verifyErr: domain.Unauthorized("verify", "Token expired")}
	store := session.NewMemoryStoreWith(domain.Identity{Token: "stale", Username: "admin"})
	sess := NewSession(auth, store, testLogger())

	status := sess.VerifyOnStartup(context.Background())

	if status != StatusVerificationFailed {
		t.Fatalf("expected verification failed, got %v", status)
	}
	if _, ok := store.Load(); ok {
		t.Error("expected stored identity to be cleared after rejected verification")
	}
	if _, ok := sess.Identity(); ok {
		t.Error("expected no confirmed identity after rejected verification")
	}
}

func TestVerifyOnStartupTransportFailureClearsStore(t *testing.T) {
	auth := &fakeAuth{verifyErr: domain.Transport(context.DeadlineExceeded, "verify")}
	store := session.NewMemoryStoreWith(domain.Identity{Token: "tok"})
	sess := NewSession(auth, store, testLogger())

	if status := sess.VerifyOnStartup(context.Background()); status != StatusVerificationFailed {
		t.Fatalf("expected verification failed, got %v", status)
	}
	if _, ok := store.Load(); ok {
		t.Error("expected stored identity to be cleared on transport failure")
	}
}

func TestLoginValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"missing username", "", "secret"},
		{"missing password", "admin", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuth{}
			sess := NewSession(auth, session.NewMemoryStore(), testLogger())

			err := sess.Login(context.Background(), tt.username, tt.password)
			if domain.ErrorCode(err) != domain.EINVALID {
				t.Errorf("expected EINVALID, got %v", err)
			}
			if auth.loginCalls != 0 {
				t.Errorf("expected no backend call for invalid input, got %d", auth.loginCalls)
			}
		})
	}
}

func TestLoginSuccessPersistsIdentity(t *testing.T) {
	identity := domain.Identity{Token: "tok", Username: "admin", Role: "superuser"}
	auth := &fakeAuth{loginIdentity: identity}
	store := session.NewMemoryStore()
	sess := NewSession(auth, store, testLogger())

	if err := sess.Login(context.Background(), "admin", "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sess.Status() != StatusAuthenticated {
		t.Errorf("expected authenticated, got %v", sess.Status())
	}
	stored, ok := store.Load()
	if !ok || stored != identity {
		t.Errorf("expected persisted identity %+v, got %+v (ok=%v)", identity, stored, ok)
	}
}

func TestLoginFailureLeavesNothingPersisted(t *testing.T) {
	auth := &fakeAuth{loginErr: domain.Unauthorized("login", "Invalid credentials")}
	store := session.NewMemoryStore()
	sess := NewSession(auth, store, testLogger())

	err := sess.Login(context.Background(), "admin", "wrong")
	if domain.ErrorCode(err) != domain.EUNAUTHORIZED {
		t.Fatalf("expected EUNAUTHORIZED, got %v", err)
	}
	if _, ok := store.Load(); ok {
		t.Error("expected nothing persisted on failed login")
	}
	if sess.Status() != StatusUnauthenticated {
		t.Errorf("expected unauthenticated, got %v", sess.Status())
	}
}

func TestLoginSuccessWithoutTokenIsRejected(t *testing.T) {
	auth := &fakeAuth{loginIdentity: domain.Identity{Username: "admin"}}
	store := session.NewMemoryStore()
	sess := NewSession(auth, store, testLogger())

	err := sess.Login(context.Background(), "admin", "secret")
	if domain.ErrorCode(err) != domain.EINTERNAL {
		t.Fatalf("expected EINTERNAL for tokenless success, got %v", err)
	}
	if sess.Status() != StatusUnauthenticated {
		t.Errorf("expected unauthenticated, got %v", sess.Status())
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	identity := domain.Identity{Token: "tok", Username: "admin"}
	auth := &fakeAuth{loginIdentity: identity}
	store := session.NewMemoryStore()
	sess := NewSession(auth, store, testLogger())

	if err := sess.Login(context.Background(), "admin", "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sess.Logout()

	if sess.Status() != StatusUnauthenticated {
		t.Errorf("expected unauthenticated after logout, got %v", sess.Status())
	}
	if _, ok := store.Load(); ok {
		t.Error("expected store cleared after logout")
	}
	if auth.verifyCalls != 0 {
		t.Error("logout must not call the backend")
	}
}
