// Package session keeps the authenticated WordPress identity and its bearer token.
//
// A [Store] is the only writer of the session keys in persisted storage. It moves between two states:
// [Unauthenticated] and [Authenticated]. [Store.Login] and [Store.Logout] are the transitions, and
// [Store.Rehydrate] restores the persisted session once at startup. Corrupt persisted data is discarded
// rather than reported.
//
// The store is also an [oauth2.TokenSource], so HTTP clients built on [oauth2.Transport] read the current
// token on every request and stop authenticating as soon as the user logs out.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wpx/internal/shared"
	"golang.org/x/oauth2"
)

// Persisted keys.
const (
	KeyToken = "jwt_token"
	KeyUser  = "user_data"

	// Written by earlier clients; cleared on logout and never read.
	KeyLegacyToken = "wp_jwt_token"
	KeyLegacyUser  = "wp_user"
	KeyBareToken   = "token"

	// KeySavedUsername backs the login form's remember-me option. It is not part of the session.
	KeySavedUsername = "saved_username"
)

// RootPath is where [Store.Logout] sends the [Navigator].
const RootPath = "/"

// SessionKeys lists every key cleared by [Store.Logout].
var SessionKeys = []string{KeyToken, KeyUser, KeyLegacyToken, KeyLegacyUser, KeyBareToken}

// Storage is a process-wide persisted string key-value store.
type Storage interface {
	// Get reports whether key exists along with its value.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Navigator performs a hard reset of client state to path.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// State is the authentication state of a [Store].
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// User is the normalized user record persisted next to the token.
type User struct {
	ID          int               `json:"id"`
	Email       string            `json:"email"`
	Username    string            `json:"username"`
	DisplayName string            `json:"displayName"`
	Description string            `json:"description"`
	AvatarURLs  map[string]string `json:"avatar_urls,omitempty"`
}

// Name returns the display name, falling back to the username.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Avatar returns the largest avatar URL, or "" when there is none.
//
// WordPress keys avatar_urls by pixel size ("24", "48", "96").
func (u User) Avatar() string {
	var best string
	size := -1
	for k, v := range u.AvatarURLs {
		var n int
		if _, err := fmt.Sscanf(k, "%d", &n); err != nil {
			continue
		}
		if n > size {
			size, best = n, v
		}
	}
	return best
}

func (u User) normalize() User {
	u.Email = strings.TrimSpace(u.Email)
	u.Username = strings.TrimSpace(u.Username)
	u.DisplayName = strings.TrimSpace(u.DisplayName)
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}
	return u
}

// Session is a snapshot of an authenticated identity.
type Session struct {
	Token string
	User  User
}

// Store holds the current session. All methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	nav     Navigator
	logger  *log.Logger
	now     func() time.Time

	state State
	token string
	user  User
}

// Option configures a [Store].
type Option func(*Store)

// WithNavigator sets the navigator invoked after logout.
func WithNavigator(n Navigator) Option {
	return func(s *Store) { s.nav = n }
}

// WithLogger sets the logger used to report discarded persisted data.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now when checking token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an unauthenticated [Store] over storage. Call [Store.Rehydrate] to restore a persisted session.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		nav:     NavigatorFunc(func(string) {}),
		logger:  log.New(io.Discard),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login moves to [Authenticated] and persists token and user.
//
// A blank token is rejected with [shared.ErrMissingCredentials] and leaves the state unchanged.
// A storage failure is returned, but the in-memory state stays authenticated; the next rehydration may then see
// stale data.
func (s *Store) Login(token string, user User) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: empty token", shared.ErrMissingCredentials)
	}
	user = user.normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Authenticated
	s.token = token
	s.user = user

	if err := s.persist(token, user); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Logout clears the session and every persisted session key, then navigates to [RootPath].
//
// Removal errors are joined and returned after navigation; the in-memory state is cleared regardless.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.state = Unauthenticated
	s.token = ""
	s.user = User{}
	err := s.clear()
	nav := s.nav
	s.mu.Unlock()

	nav.Navigate(RootPath)

	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Rehydrate restores the persisted session.
//
// Both the token and a user record decoding to a JSON object are required. Anything else clears the session keys
// and leaves the store [Unauthenticated]. Failures are logged, never returned.
func (s *Store) Rehydrate() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Unauthenticated
	s.token = ""
	s.user = User{}

	token, hasToken, err := s.storage.Get(KeyToken)
	if err != nil {
		s.logger.Warn("failed to read persisted token", "error", err)
		hasToken = false
	}
	raw, hasUser, err := s.storage.Get(KeyUser)
	if err != nil {
		s.logger.Warn("failed to read persisted user", "error", err)
		hasUser = false
	}

	if !hasToken && !hasUser {
		return s.state
	}

	token = strings.TrimSpace(token)
	if !hasToken || !hasUser || token == "" {
		s.logger.Info("discarding partial session", "token", hasToken, "user", hasUser)
		s.discard()
		return s.state
	}

	user, err := decodeUser(raw)
	if err != nil {
		s.logger.Warn("discarding corrupt session", "error", err)
		s.discard()
		return s.state
	}

	s.state = Authenticated
	s.token = token
	s.user = user
	return s.state
}

// UpdateUser replaces the persisted user record, keeping the token.
func (s *Store) UpdateUser(user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Authenticated {
		return shared.ErrNotAuthenticated
	}
	if user.ID == 0 {
		user.ID = s.user.ID
	}
	s.user = user.normalize()

	data, err := json.Marshal(s.user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.storage.Set(KeyUser, string(data)); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	return nil
}

// State reports the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Current returns the session and whether the store is authenticated.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != Authenticated {
		return Session{}, false
	}
	return Session{Token: s.token, User: s.user}, true
}

// Token implements [oauth2.TokenSource].
//
// It fails with [shared.ErrNotAuthenticated] when logged out and [shared.ErrTokenExpired] once the JWT exp claim
// has passed. Tokens that are not JWTs never expire.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	token, state := s.token, s.state
	s.mu.RUnlock()

	if state != Authenticated {
		return nil, shared.ErrNotAuthenticated
	}

	t := &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
	if expiry, err := TokenExpiry(token); err == nil && !expiry.IsZero() {
		t.Expiry = expiry
		if !expiry.After(s.now()) {
			return nil, fmt.Errorf("%w at %s", shared.ErrTokenExpired, expiry.Format(time.RFC3339))
		}
	}
	return t, nil
}

// SavedUsername returns the remembered login name, or "".
func (s *Store) SavedUsername() string {
	name, ok, err := s.storage.Get(KeySavedUsername)
	if err != nil || !ok {
		return ""
	}
	return name
}

// RememberUsername stores name for the next login; an empty name forgets it.
func (s *Store) RememberUsername(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.storage.Remove(KeySavedUsername)
	}
	return s.storage.Set(KeySavedUsername, name)
}

func (s *Store) persist(token string, user User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.storage.Set(KeyToken, token); err != nil {
		return err
	}
	return s.storage.Set(KeyUser, string(data))
}

func (s *Store) clear() error {
	var errs []error
	for _, key := range SessionKeys {
		if err := s.storage.Remove(key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Store) discard() {
	if err := s.clear(); err != nil {
		s.logger.Warn("failed to clear persisted session", "error", err)
	}
}

// decodeUser accepts only a JSON object; "null", arrays and scalars are corrupt.
func decodeUser(raw string) (User, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 || data[0] != '{' {
		return User{}, fmt.Errorf("%w: user record is not an object", shared.ErrParseFailure)
	}

	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return User{}, fmt.Errorf("%w: %v", shared.ErrParseFailure, err)
	}
	return u, nil
}
