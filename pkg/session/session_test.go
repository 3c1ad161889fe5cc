package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardkit/boardclient/pkg/store"
)

func newTestStorage(t *testing.T) store.Storage {
	t.Helper()

	s, err := store.NewFileStorage(afero.NewMemMapFs(), "/state")
	require.NoError(t, err)
	return s
}

func loggedIn() State {
	return State{
		Token:       "abc",
		UserID:      "u-1",
		UserName:    "Alice",
		UserEmail:   "alice@example.com",
		Permissions: "admin",
		IsLoggedIn:  true,
	}
}

func TestNew_EmptyDefaults(t *testing.T) {
	s, err := New(context.Background(), newTestStorage(t))
	require.NoError(t, err)

	assert.Equal(t, State{}, s.Snapshot())
	assert.Empty(t, s.AccessToken())
}

func TestLogin_PersistsAllFields(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	s, err := New(ctx, storage)
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, loggedIn()))

	expected := map[string]string{
		KeyAccessToken: `"abc"`,
		KeyUserID:      `"u-1"`,
		KeyUserName:    `"Alice"`,
		KeyUserEmail:   `"alice@example.com"`,
		KeyPermissions: `"admin"`,
		KeyIsLogin:     `true`,
	}
	for key, want := range expected {
		got, err := storage.Get(ctx, key)
		require.NoError(t, err, key)
		assert.JSONEq(t, want, got, key)
	}

	// A fresh session over the same storage sees the same state.
	reloaded, err := New(ctx, storage)
	require.NoError(t, err)
	assert.Equal(t, loggedIn(), reloaded.Snapshot())
}

func TestReset_ClearsEveryField(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	s, err := New(ctx, storage)
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, loggedIn()))

	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, State{}, s.Snapshot())

	reloaded, err := New(ctx, storage)
	require.NoError(t, err)
	assert.Equal(t, State{}, reloaded.Snapshot())
}

func TestReset_LeavesNavigationAlone(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	s, err := New(ctx, storage)
	require.NoError(t, err)
	nav, err := NewNavigation(ctx, storage)
	require.NoError(t, err)

	require.NoError(t, s.Login(ctx, loggedIn()))
	require.NoError(t, nav.SetPage(ctx, 4))
	require.NoError(t, nav.SetKeyword(ctx, "golang"))

	require.NoError(t, s.Reset(ctx))

	assert.Equal(t, 4, nav.Page())
	assert.Equal(t, "golang", nav.Keyword())
}

func TestSubscribe_NeverSeesPartialReset(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, loggedIn()))

	var seen []State
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, st) })
	defer unsubscribe()

	require.NoError(t, s.Reset(ctx))

	require.Len(t, seen, 2)
	assert.Equal(t, loggedIn(), seen[0])
	assert.Equal(t, State{}, seen[1])
	for _, st := range seen {
		if st.Token == "" {
			assert.Empty(t, st.UserName)
			assert.False(t, st.IsLoggedIn)
		}
	}
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, nil)
	require.NoError(t, err)

	calls := 0
	unsubscribe := s.Subscribe(func(State) { calls++ })
	unsubscribe()

	require.NoError(t, s.Login(ctx, loggedIn()))
	assert.Equal(t, 1, calls)
}

func TestSetPermissions(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, loggedIn()))

	var last State
	s.Subscribe(func(st State) { last = st })

	require.NoError(t, s.SetPermissions(ctx, "reader"))
	assert.Equal(t, "reader", s.Snapshot().Permissions)
	assert.Equal(t, "reader", last.Permissions)
	assert.Equal(t, "abc", last.Token)
}

// brokenStorage reads fine but refuses writes after it is armed.
type brokenStorage struct {
	store.Storage
	armed bool
}

func (b *brokenStorage) Set(ctx context.Context, key, value string) error {
	if b.armed {
		return errors.New("read-only filesystem")
	}
	return b.Storage.Set(ctx, key, value)
}

func TestReset_AggregatesStorageErrors(t *testing.T) {
	ctx := context.Background()
	storage := &brokenStorage{Storage: newTestStorage(t)}

	s, err := New(ctx, storage)
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, loggedIn()))

	storage.armed = true
	err = s.Reset(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "6 errors occurred")

	// Memory is cleared regardless.
	assert.Equal(t, State{}, s.Snapshot())
}

// recordingStorage records the order keys are written in.
type recordingStorage struct {
	store.Storage
	keys []string
}

func (r *recordingStorage) Set(ctx context.Context, key, value string) error {
	r.keys = append(r.keys, key)
	return r.Storage.Set(ctx, key, value)
}

func TestApply_WriteOrder(t *testing.T) {
	ctx := context.Background()
	storage := &recordingStorage{Storage: newTestStorage(t)}

	s, err := New(ctx, storage)
	require.NoError(t, err)

	storage.keys = nil
	require.NoError(t, s.Login(ctx, loggedIn()))
	require.Len(t, storage.keys, 6)
	assert.Equal(t, []string{KeyAccessToken, KeyIsLogin}, storage.keys[4:])

	storage.keys = nil
	require.NoError(t, s.Reset(ctx))
	require.Len(t, storage.keys, 6)
	assert.Equal(t, []string{KeyIsLogin, KeyAccessToken}, storage.keys[:2])
}

func TestToken_TokenSource(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, nil)
	require.NoError(t, err)

	tok, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, tok.AccessToken)

	require.NoError(t, s.Login(ctx, loggedIn()))
	tok, err = s.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())
}

func TestClaims(t *testing.T) {
	ctx := context.Background()
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": exp.Unix(),
	}).SignedString([]byte("not-the-server-key"))
	require.NoError(t, err)

	s, err := New(ctx, nil)
	require.NoError(t, err)

	_, err = s.Claims()
	assert.ErrorIs(t, err, ErrNoToken)

	st := loggedIn()
	st.Token = signed
	require.NoError(t, s.Login(ctx, st))

	claims, err := s.Claims()
	require.NoError(t, err)
	assert.Equal(t, "alice", claims["sub"])

	got, err := s.ExpiresAt()
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))
}

func TestClaims_OpaqueToken(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, loggedIn()))

	_, err = s.Claims()
	assert.Error(t, err)
}
