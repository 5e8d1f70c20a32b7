package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/safastep/console/internal/domain"
	"github.com/safastep/console/internal/session"
)

var (
	testHashKey  = []byte("0123456789abcdef0123456789abcdef")
	testBlockKey = []byte("abcdef0123456789abcdef0123456789")
)

type fakeAuth struct {
	mu          sync.Mutex
	verifyErr   error
	verifyCalls int
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (domain.Identity, error) {
	return domain.Identity{}, domain.Unauthorized("login", "not supported")
}

func (f *fakeAuth) Verify(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	return f.verifyErr
}

func (f *fakeAuth) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyCalls
}

// identityCookie encodes an identity the way a real login would.
func identityCookie(t *testing.T, codec *session.Codec, identity domain.Identity) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := codec.Store(w, r).Save(identity); err != nil {
		t.Fatalf("save identity: %v", err)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("identity cookie not set")
	return nil
}

// capture records the identity visible to the downstream handler.
func capture(identity *domain.Identity, ok *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*identity, *ok = GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestWithIdentityNoCookie(t *testing.T) {
	auth := &fakeAuth{}
	codec := session.NewCodec(testHashKey, testBlockKey, false)
	mw := NewAuthMiddleware(auth, codec, session.NewVerifyCache(time.Minute), testLogger())

	var got domain.Identity
	var ok bool
	handler := mw.WithIdentity(capture(&got, &ok))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if ok {
		t.Error("expected no identity without a cookie")
	}
	if auth.calls() != 0 {
		t.Error("expected no verify call without a cookie")
	}
}

func TestWithIdentityVerifiesStoredToken(t *testing.T) {
	auth := &fakeAuth{}
	codec := session.NewCodec(testHashKey, testBlockKey, false)
	cache := session.NewVerifyCache(time.Minute)
	mw := NewAuthMiddleware(auth, codec, cache, testLogger())

	identity := domain.Identity{Token: "tok", Username: "admin", Role: "superuser"}
	cookie := identityCookie(t, codec, identity)

	var got domain.Identity
	var ok bool
	handler := mw.WithIdentity(capture(&got, &ok))

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(cookie)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if !ok || got != identity {
		t.Fatalf("expected identity %+v, got %+v (ok=%v)", identity, got, ok)
	}
	if auth.calls() != 1 {
		t.Errorf("expected one verify call, got %d", auth.calls())
	}

	// A second request within the cache TTL skips the backend.
	r = httptest.NewRequest(http.MethodGet, "/users", nil)
	r.AddCookie(cookie)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if !ok {
		t.Error("expected identity on cached request")
	}
	if auth.calls() != 1 {
		t.Errorf("expected cached verification to skip the backend, got %d calls", auth.calls())
	}
}

func TestWithIdentityRejectedTokenContinuesUnauthenticated(t *testing.T) {
	auth := &fakeAuth{verifyErr: domain.Unauthorized("verify", "Token expired")}
	codec := session.NewCodec(testHashKey, testBlockKey, false)
	cache := session.NewVerifyCache(time.Minute)
	mw := NewAuthMiddleware(auth, codec, cache, testLogger())

	cookie := identityCookie(t, codec, domain.Identity{Token: "stale", Username: "admin"})

	var got domain.Identity
	var ok bool
	handler := mw.WithIdentity(capture(&got, &ok))

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if ok {
		t.Error("expected no identity for rejected token")
	}
	if cache.RecentlyVerified("stale") {
		t.Error("rejected token must not be cached as verified")
	}

	// The failed verification must clear the cookie.
	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected identity cookie to be cleared")
	}
}

func TestRequireAdminRedirectsToLogin(t *testing.T) {
	auth := &fakeAuth{}
	codec := session.NewCodec(testHashKey, testBlockKey, false)
	mw := NewAuthMiddleware(auth, codec, session.NewVerifyCache(time.Minute), testLogger())

	handler := mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/users?page=2", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?return_to=/users?page=2" {
		t.Errorf("unexpected redirect target %q", loc)
	}
}

func TestRequireAdminPassesAuthenticated(t *testing.T) {
	auth := &fakeAuth{}
	codec := session.NewCodec(testHashKey, testBlockKey, false)
	cache := session.NewVerifyCache(time.Minute)
	mw := NewAuthMiddleware(auth, codec, cache, testLogger())

	cookie := identityCookie(t, codec, domain.Identity{Token: "tok", Username: "admin"})

	handler := Stack(mw.WithIdentity, mw.RequireAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("expected authenticated request to pass, got %d", w.Code)
	}
}

func TestStackOrder(t *testing.T) {
	var order []string
	mk := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Stack(mk("outer"), mk("inner"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"outer", "inner", "handler"}
	for i, name := range want {
		if order[i] != name {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}
