// Package authsession keeps track of who is signed in on a client. A
// Manager is the single source of truth for the current session: it
// persists the user and token to a storage.Store, restores them on start,
// and notifies subscribers of every change.
//
// Sign-in and sign-out keep storage holding both <namespace>:user and
// <namespace>:token, or neither. UpdateUser only ever touches the user entry.
package authsession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gobarber/gobarber/internal/client/api"
	"github.com/gobarber/gobarber/internal/client/storage"
)

// DefaultNamespace prefixes the storage keys unless WithNamespace is given.
const DefaultNamespace = "@Gobarber"

// ErrNotSignedIn is returned by callers that need a session and find none.
var ErrNotSignedIn = errors.New("authsession: not signed in")

// Session is the signed-in user and the bearer token issued for them.
type Session struct {
	User  api.UserProfile
	Token string
}

// SessionCreator exchanges credentials for a session. *api.Client
// implements it.
type SessionCreator interface {
	CreateSession(ctx context.Context, creds api.Credentials) (*api.SessionResponse, error)
}

// TokenSetter is implemented by API clients that send a bearer token. When
// the SessionCreator implements it, the manager keeps its token in sync with
// the session.
type TokenSetter interface {
	SetToken(token string)
}

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace overrides DefaultNamespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		m.namespace = ns
	}
}

// WithLogger sets the logger used for restore warnings and state changes.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager mediates sign-in, sign-out, and profile updates against storage
// and the API. Create one per application with New and share the pointer.
type Manager struct {
	store     storage.Store
	api       SessionCreator
	namespace string
	logger    *slog.Logger

	// mu guards session, hasUser, signedIn and seq and serialises commits,
	// so storage and memory always change together. hasUser is set once a
	// user is known; signedIn additionally requires a token.
	mu       sync.RWMutex
	session  Session
	hasUser  bool
	signedIn bool
	seq      uint64

	// notifyMu serialises delivery. States older than delivered are
	// dropped, so subscribers never see a superseded session.
	notifyMu  sync.Mutex
	delivered uint64

	subsMu  sync.Mutex
	subs    map[int]func(Session, bool)
	nextSub int
}

// New creates a Manager and restores any session found in store. No network
// call is made. A half-written or undecodable session is removed from
// storage and the manager starts signed out; storage read errors are
// returned.
func New(ctx context.Context, store storage.Store, client SessionCreator, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("authsession: store is required")
	}
	if client == nil {
		return nil, errors.New("authsession: api client is required")
	}

	m := &Manager{
		store:     store,
		api:       client,
		namespace: DefaultNamespace,
		logger:    slog.Default(),
		subs:      make(map[int]func(Session, bool)),
	}
	for _, opt := range opts {
		opt(m)
	}
	if strings.TrimSpace(m.namespace) == "" {
		return nil, errors.New("authsession: namespace must not be empty")
	}

	if err := m.restore(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// UserKey is the storage key holding the user JSON.
func (m *Manager) UserKey() string { return m.namespace + ":user" }

// TokenKey is the storage key holding the raw token.
func (m *Manager) TokenKey() string { return m.namespace + ":token" }

func (m *Manager) restore(ctx context.Context) error {
	rawUser, hasUser, err := m.store.Get(ctx, m.UserKey())
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	token, hasToken, err := m.store.Get(ctx, m.TokenKey())
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	if !hasUser && !hasToken {
		return nil
	}

	var reason string
	var user api.UserProfile
	switch {
	case !hasUser:
		reason = "token without user"
	case !hasToken || token == "":
		reason = "user without token"
	default:
		user, err = decodeUser(rawUser)
		if err != nil {
			reason = err.Error()
		}
	}

	if reason != "" {
		m.logger.Warn("discarding corrupt stored session",
			slog.String("namespace", m.namespace),
			slog.String("reason", reason),
		)
		if err := m.clearStorage(ctx); err != nil {
			return fmt.Errorf("clearing corrupt session: %w", err)
		}
		return nil
	}

	m.session = Session{User: user, Token: token}
	m.hasUser = true
	m.signedIn = true
	m.syncToken(token)

	m.logger.Debug("session restored", slog.String("email", user.Email))
	return nil
}

// SignIn exchanges creds for a session and persists it. On failure nothing
// is written and the previous state stays in place. Concurrent calls are
// not coordinated; the last one to commit wins.
func (m *Manager) SignIn(ctx context.Context, creds api.Credentials) error {
	resp, err := m.api.CreateSession(ctx, creds)
	if err != nil {
		return fmt.Errorf("signing in: %w", err)
	}

	userJSON, err := json.Marshal(resp.User)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	m.mu.Lock()
	prevUser, prevOK, err := m.store.Get(ctx, m.UserKey())
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("persisting session: %w", err)
	}
	if err := m.store.Set(ctx, m.UserKey(), string(userJSON)); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("persisting session: %w", err)
	}
	if err := m.store.Set(ctx, m.TokenKey(), resp.Token); err != nil {
		// Put the user entry back so storage still matches memory.
		var rollbackErr error
		if prevOK {
			rollbackErr = m.store.Set(ctx, m.UserKey(), prevUser)
		} else {
			rollbackErr = m.store.Remove(ctx, m.UserKey())
		}
		m.mu.Unlock()
		return fmt.Errorf("persisting session: %w", errors.Join(err, rollbackErr))
	}

	m.session = Session{User: resp.User, Token: resp.Token}
	m.hasUser = true
	m.signedIn = true
	m.syncToken(resp.Token)

	m.logger.Info("signed in", slog.String("email", resp.User.Email))
	m.publishAndUnlock()
	return nil
}

// SignOut removes the session from storage and memory. Signing out when
// already signed out is a no-op. Memory is cleared even if storage fails;
// the storage error is returned.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	err := m.clearStorage(ctx)

	hadState := m.hasUser || m.signedIn
	m.session = Session{}
	m.hasUser = false
	m.signedIn = false
	m.syncToken("")

	if !hadState {
		m.mu.Unlock()
		if err != nil {
			return fmt.Errorf("signing out: %w", err)
		}
		return nil
	}

	m.logger.Info("signed out")
	m.publishAndUnlock()
	if err != nil {
		return fmt.Errorf("signing out: %w", err)
	}
	return nil
}

// UpdateUser replaces the stored and in-memory user, leaving the token
// alone. It does not call the API and works whether or not anyone is signed
// in; without a session the user becomes visible through User while Token
// stays empty. Only a storage failure is returned.
func (m *Manager) UpdateUser(ctx context.Context, user api.UserProfile) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	m.mu.Lock()
	if err := m.store.Set(ctx, m.UserKey(), string(userJSON)); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("updating user: %w", err)
	}

	m.session.User = user
	m.hasUser = true
	m.publishAndUnlock()
	return nil
}

// User returns the current user, if any. This is normally the signed-in
// user, or the last one passed to UpdateUser.
func (m *Manager) User() (api.UserProfile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.User, m.hasUser
}

// Token returns the current bearer token, or "" when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Token
}

// Session returns the current session, if any. It reports false until a
// token is held.
func (m *Manager) Session() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, m.signedIn
}

// Subscribe registers fn to be called after every state change with the new
// session and whether anyone is signed in. When commits race, a state that
// was already superseded by a delivered one is skipped. fn runs on the
// goroutine that made the change and may read from the manager, but must not
// call SignIn, SignOut, or UpdateUser. The returned func unsubscribes.
func (m *Manager) Subscribe(fn func(Session, bool)) (cancel func()) {
	m.subsMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subsMu.Lock()
			delete(m.subs, id)
			m.subsMu.Unlock()
		})
	}
}

// publishAndUnlock releases mu and delivers the committed state. Must be
// called with mu held for writing.
func (m *Manager) publishAndUnlock() {
	m.seq++
	seq, session, signedIn := m.seq, m.session, m.signedIn
	m.mu.Unlock()

	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	if seq <= m.delivered {
		return
	}
	m.delivered = seq

	m.subsMu.Lock()
	subs := make([]func(Session, bool), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.subsMu.Unlock()

	for _, fn := range subs {
		fn(session, signedIn)
	}
}

func (m *Manager) clearStorage(ctx context.Context) error {
	return errors.Join(
		m.store.Remove(ctx, m.UserKey()),
		m.store.Remove(ctx, m.TokenKey()),
	)
}

func (m *Manager) syncToken(token string) {
	if ts, ok := m.api.(TokenSetter); ok {
		ts.SetToken(token)
	}
}

// decodeUser parses a stored user entry, which must be a JSON object.
func decodeUser(raw string) (api.UserProfile, error) {
	var user api.UserProfile
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return user, errors.New("user entry is not a JSON object")
	}
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return user, fmt.Errorf("user entry: %w", err)
	}
	return user, nil
}
