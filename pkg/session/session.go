// Package session holds the authenticated user's Session State and the UI
// Navigation State, both mirrored to durable storage.
//
// Session State fields are owned exclusively by Session. They change only
// through Login, SetPermissions and Reset, and every mutation completes
// under one lock so readers and observers never see a partially cleared
// session.
package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/oauth2"

	"github.com/boardkit/boardclient/pkg/store"
)

// Durable storage keys for Session State.
const (
	KeyAccessToken = "access_token"
	KeyUserEmail   = "user_email"
	KeyUserID      = "user_id"
	KeyUserName    = "user_nm"
	KeyIsLogin     = "is_login"
	KeyPermissions = "permissions"
)

// State is a snapshot of the Session State.
type State struct {
	Token       string `json:"token" yaml:"token"`
	UserID      string `json:"userId" yaml:"userId"`
	UserName    string `json:"userName" yaml:"userName"`
	UserEmail   string `json:"userEmail" yaml:"userEmail"`
	Permissions string `json:"permissions" yaml:"permissions"`
	IsLoggedIn  bool   `json:"isLoggedIn" yaml:"isLoggedIn"`
}

// Session is the storage-backed record of the current authenticated user.
type Session struct {
	mu sync.RWMutex

	token       *store.Persisted[string]
	userEmail   *store.Persisted[string]
	userID      *store.Persisted[string]
	userName    *store.Persisted[string]
	permissions *store.Persisted[string]
	isLogin     *store.Persisted[bool]

	obsMu     sync.Mutex
	observers map[uint64]func(State)
	nextID    uint64
}

// Session supplies bearer tokens to HTTP clients.
var _ oauth2.TokenSource = (*Session)(nil)

// New loads the Session State from storage. A nil storage keeps the session
// in memory only.
func New(ctx context.Context, storage store.Storage) (*Session, error) {
	s := &Session{observers: make(map[uint64]func(State))}

	var err error
	if s.token, err = store.NewPersisted(ctx, storage, KeyAccessToken, ""); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if s.userEmail, err = store.NewPersisted(ctx, storage, KeyUserEmail, ""); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if s.userID, err = store.NewPersisted(ctx, storage, KeyUserID, ""); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if s.userName, err = store.NewPersisted(ctx, storage, KeyUserName, ""); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if s.permissions, err = store.NewPersisted(ctx, storage, KeyPermissions, ""); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if s.isLogin, err = store.NewPersisted(ctx, storage, KeyIsLogin, false); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return s, nil
}

// Snapshot returns a consistent copy of every Session State field.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	return State{
		Token:       s.token.Get(),
		UserID:      s.userID.Get(),
		UserName:    s.userName.Get(),
		UserEmail:   s.userEmail.Get(),
		Permissions: s.permissions.Get(),
		IsLoggedIn:  s.isLogin.Get(),
	}
}

// AccessToken returns the current bearer token, or "" when logged out.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token.Get()
}

// Token implements oauth2.TokenSource. An empty AccessToken means there is
// no authenticated user.
func (s *Session) Token() (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: s.AccessToken(), TokenType: "Bearer"}, nil
}

// Login replaces every Session State field with st.
func (s *Session) Login(ctx context.Context, st State) error {
	return s.apply(ctx, st)
}

// SetPermissions updates the permission string of the current user.
func (s *Session) SetPermissions(ctx context.Context, permissions string) error {
	s.mu.Lock()
	err := s.permissions.Set(ctx, permissions)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return err
}

// Reset clears every Session State field back to its empty default in one
// sweep. The in-memory state is always cleared; storage write failures are
// collected and returned together.
func (s *Session) Reset(ctx context.Context) error {
	return s.apply(ctx, State{})
}

// apply writes st field by field. is_login and access_token are cleared
// before the user fields and set after them, so storage interrupted mid-write
// never holds a token for a partially written user.
func (s *Session) apply(ctx context.Context, st State) error {
	var result *multierror.Error

	s.mu.Lock()
	if st.IsLoggedIn {
		result = multierror.Append(result, s.applyUser(ctx, st)...)
		result = multierror.Append(result,
			s.token.Set(ctx, st.Token),
			s.isLogin.Set(ctx, st.IsLoggedIn),
		)
	} else {
		result = multierror.Append(result,
			s.isLogin.Set(ctx, st.IsLoggedIn),
			s.token.Set(ctx, st.Token),
		)
		result = multierror.Append(result, s.applyUser(ctx, st)...)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return result.ErrorOrNil()
}

func (s *Session) applyUser(ctx context.Context, st State) []error {
	return []error{
		s.userEmail.Set(ctx, st.UserEmail),
		s.userID.Set(ctx, st.UserID),
		s.userName.Set(ctx, st.UserName),
		s.permissions.Set(ctx, st.Permissions),
	}
}

// Subscribe registers fn and calls it immediately with the current state.
// fn then receives a snapshot after every completed mutation.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.obsMu.Unlock()

	fn(s.Snapshot())

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Session) notify(st State) {
	s.obsMu.Lock()
	ids := make([]uint64, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.observers[id])
	}
	s.obsMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
