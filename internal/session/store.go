// Package session handles persistence of the administrator identity
// between requests.
//
// The identity triple (token, username, role) is the console's durable
// client state. It is written atomically as a group on login and cleared
// as a group on logout or verification failure; a partially populated
// identity is never observable.
package session

import (
	"net/http"
	"sync"

	"github.com/gorilla/securecookie"

	"github.com/safastep/console/internal/domain"
)

const (
	// CookieName is the name of the encrypted cookie holding the identity.
	CookieName = "safastep_admin"

	// CookiePath ensures the cookie is sent with all requests.
	CookiePath = "/"

	// CookieMaxAge sets the cookie expiration (7 days = 604800 seconds).
	CookieMaxAge = 7 * 24 * 60 * 60
)

// Store loads and persists one administrator identity.
type Store interface {
	// Load returns the persisted identity, or ok=false when none is
	// stored (or the stored value cannot be decoded).
	Load() (identity domain.Identity, ok bool)

	// Save persists the identity as a single atomic group.
	Save(identity domain.Identity) error

	// Clear removes all persisted identity fields.
	Clear()
}

// =============================================================================
// Cookie-backed store
// =============================================================================

// Codec encodes identities into an authenticated, encrypted cookie value.
// One Codec is shared by all requests; per-request Stores are created
// with Codec.Store.
type Codec struct {
	sc       *securecookie.SecureCookie
	isSecure bool
}

// NewCodec creates a cookie codec. hashKey authenticates the cookie
// (32 or 64 bytes); blockKey enables encryption (16, 24 or 32 bytes).
func NewCodec(hashKey, blockKey []byte, isSecure bool) *Codec {
	return &Codec{
		sc:       securecookie.New(hashKey, blockKey),
		isSecure: isSecure,
	}
}

// Store binds the codec to one request/response pair.
func (c *Codec) Store(w http.ResponseWriter, r *http.Request) Store {
	return &cookieStore{codec: c, w: w, r: r}
}

// cookieValue is the serialized cookie payload.
type cookieValue struct {
	Token    string
	Username string
	Role     string
}

type cookieStore struct {
	codec *Codec
	w     http.ResponseWriter
	r     *http.Request
}

func (s *cookieStore) Load() (domain.Identity, bool) {
	cookie, err := s.r.Cookie(CookieName)
	if err != nil {
		return domain.Identity{}, false
	}

	var v cookieValue
	if err := s.codec.sc.Decode(CookieName, cookie.Value, &v); err != nil {
		// Tampered or stale cookie; treat as absent.
		return domain.Identity{}, false
	}
	if v.Token == "" {
		return domain.Identity{}, false
	}
	return domain.Identity{Token: v.Token, Username: v.Username, Role: v.Role}, true
}

func (s *cookieStore) Save(identity domain.Identity) error {
	encoded, err := s.codec.sc.Encode(CookieName, cookieValue{
		Token:    identity.Token,
		Username: identity.Username,
		Role:     identity.Role,
	})
	if err != nil {
		return err
	}

	http.SetCookie(s.w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     CookiePath,
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		Secure:   s.codec.isSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *cookieStore) Clear() {
	http.SetCookie(s.w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     CookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.codec.isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// =============================================================================
// In-memory store
// =============================================================================

// MemoryStore is a Store kept in process memory. Used by tests to
// substitute a fake persistence layer.
type MemoryStore struct {
	mu       sync.Mutex
	identity domain.Identity
	present  bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith creates a MemoryStore pre-populated with an identity.
func NewMemoryStoreWith(identity domain.Identity) *MemoryStore {
	return &MemoryStore{identity: identity, present: true}
}

func (s *MemoryStore) Load() (domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return domain.Identity{}, false
	}
	return s.identity, true
}

func (s *MemoryStore) Save(identity domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
	s.present = true
	return nil
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = domain.Identity{}
	s.present = false
}
