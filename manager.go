package authclient

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// SessionManager owns the client-side authentication lifecycle. It is the
// single writer of the current Identity and of the IdentityStore mirror;
// everything else observes through Current and Subscribe.
//
// Mutating operations (Bootstrap, Login, Logout, UpdateIdentity) are
// serialized: a second call issued before the first resolves waits, so
// interleaved writes can never produce a mixed identity. Refresh is
// deduplicated with a single-flight group instead, because the heartbeat and
// periodic refresh loops may legitimately overlap a user action; its
// network-failure-preserves-state rule keeps that safe.
type SessionManager struct {
	client *Client
	store  IdentityStore
	logger Logger

	opMu   sync.Mutex
	flight singleflight.Group

	mu          sync.RWMutex
	identity    *User
	loading     bool
	initialized bool
	subscribers map[int]Subscriber
	nextSub     int
}

// NewSessionManager returns a manager seeded with the cached identity, if
// any, so the embedder can render a plausible state before Bootstrap's round
// trip resolves. Pass the same store the Client restores sessions from.
func NewSessionManager(client *Client, store IdentityStore) *SessionManager {
	if store == nil {
		store = NewMemoryStore()
	}
	m := &SessionManager{
		client:      client,
		store:       store,
		logger:      defLogger{},
		loading:     true,
		subscribers: map[int]Subscriber{},
	}
	if cached, err := store.Load(context.Background()); err == nil && cached != nil {
		m.identity = cached
	}
	return m
}

func (m *SessionManager) WithLogger(logger Logger) *SessionManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Client returns the API client the manager drives, so embedders can reach
// the admin, account, and reminder surfaces over the same session.
func (m *SessionManager) Client() *Client {
	return m.client
}

// Current returns a copy of the last-known identity, or nil when absent.
func (m *SessionManager) Current() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity.Clone()
}

// Loading reports whether the initial bootstrap round trip is still pending.
func (m *SessionManager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Initialized reports whether Bootstrap has completed once.
func (m *SessionManager) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// Subscribe registers fn to be invoked with a copy of the identity on every
// change (nil on session end). The returned function cancels the
// subscription.
func (m *SessionManager) Subscribe(fn Subscriber) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// setIdentity commits the new identity, mirrors it to the store in lockstep,
// and notifies subscribers.
func (m *SessionManager) setIdentity(ctx context.Context, user *User) {
	m.mu.Lock()
	m.identity = user
	subs := make([]Subscriber, 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	if user == nil {
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Error("could not clear identity cache: %v", err)
		}
	} else {
		if err := m.store.Save(ctx, user); err != nil {
			m.logger.Error("could not persist identity cache: %v", err)
		}
	}

	for _, fn := range subs {
		fn(user.Clone())
	}
}

// Bootstrap resolves the initial authentication status once per process
// lifetime. Failure of any kind is absorbed: the manager always ends up
// initialized with loading false, holding either the server-confirmed
// identity or none. Subsequent calls are no-ops returning the current
// identity.
func (m *SessionManager) Bootstrap(ctx context.Context) *User {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.Initialized() {
		return m.Current()
	}

	status, err := m.client.Status(ctx)
	switch {
	case err != nil:
		m.logger.Error("bootstrap status check failed: %v", err)
		m.setIdentity(ctx, nil)
	case status.Authenticated && status.User != nil:
		m.setIdentity(ctx, status.User)
	default:
		m.setIdentity(ctx, nil)
	}

	m.mu.Lock()
	m.loading = false
	m.initialized = true
	m.mu.Unlock()

	return m.Current()
}

// Refresh re-validates the identity against the server.
//
// A definitive not-authenticated answer triggers one session-restore round
// trip followed by one status retry; if that fails too, the identity and the
// cache entry are cleared and (nil, nil) is returned. A transport failure is
// not a definitive answer: the current identity is preserved and returned
// together with the recoverable error.
func (m *SessionManager) Refresh(ctx context.Context) (*User, error) {
	v, err, _ := m.flight.Do("refresh", func() (any, error) {
		return m.refresh(ctx)
	})
	user, _ := v.(*User)
	return user, err
}

func (m *SessionManager) refresh(ctx context.Context) (*User, error) {
	status, err := m.client.Status(ctx)
	if err != nil {
		if IsNetworkError(err) {
			m.logger.Debug("refresh could not reach server, keeping identity: %v", err)
			return m.Current(), err
		}
		return m.recoverSession(ctx)
	}

	if status.Authenticated && status.User != nil {
		m.setIdentity(ctx, status.User)
		return m.Current(), nil
	}

	return m.recoverSession(ctx)
}

// recoverSession runs the single restore-then-retry round after the server
// said no. Only a confirmed status answer re-establishes the identity.
func (m *SessionManager) recoverSession(ctx context.Context) (*User, error) {
	cached, err := m.store.Load(ctx)
	if err == nil && cached != nil {
		if restoreErr := m.client.RestoreSession(ctx); restoreErr == nil {
			retry, retryErr := m.client.Status(ctx)
			if retryErr == nil && retry.Authenticated && retry.User != nil {
				m.setIdentity(ctx, retry.User)
				return m.Current(), nil
			}
		}
	}

	m.setIdentity(ctx, nil)
	return nil, nil
}

// Login clears any existing identity, submits credentials, and commits the
// new identity only after an independent status check confirms the session
// was established. The returned error carries the user-facing reason; the
// identity is left absent on every failure path.
func (m *SessionManager) Login(ctx context.Context, username, password string) (*User, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	// stale identity must not be visible during the round trip
	m.setIdentity(ctx, nil)

	resp, err := m.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		message := resp.Message
		if message == "" {
			message = "login failed with unknown error"
		}
		return nil, remoteRejection(message)
	}

	status, err := m.client.Status(ctx)
	if err != nil {
		return nil, err
	}
	if !status.Authenticated || status.User == nil {
		return nil, ErrNotAuthenticated
	}

	m.setIdentity(ctx, status.User)
	return m.Current(), nil
}

// Logout always succeeds locally: the cache entry is removed before the
// remote call so no concurrent reader can observe an authenticated flash,
// and the identity is cleared regardless of the remote outcome. The returned
// error, if any, is the best-effort remote failure.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("could not clear identity cache: %v", err)
	}

	remoteErr := m.client.Logout(ctx)
	if remoteErr != nil {
		m.logger.Error("remote logout failed: %v", remoteErr)
	}

	m.setIdentity(ctx, nil)
	return remoteErr
}

// UpdateIdentity shallow-merges the patch into the current identity after a
// server-confirmed profile edit. It never talks to the server; it only
// reconciles local state and the cache mirror. Returns the merged identity,
// or nil when no session is active.
func (m *SessionManager) UpdateIdentity(ctx context.Context, patch UserPatch) *User {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.RLock()
	current := m.identity.Clone()
	m.mu.RUnlock()
	if current == nil {
		return nil
	}

	patch.apply(current)
	m.setIdentity(ctx, current)
	return current.Clone()
}
