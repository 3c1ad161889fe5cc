package session

import (
	"context"
	"fmt"

	"github.com/boardkit/boardclient/pkg/store"
)

// Durable storage keys for UI Navigation State.
const (
	KeyPage    = "page"
	KeyKeyword = "keyword"
)

// Navigation is the last-viewed page index and last search keyword. It
// survives restarts and is not touched by Session.Reset.
type Navigation struct {
	page    *store.Persisted[int]
	keyword *store.Persisted[string]
}

// NewNavigation loads the UI Navigation State from storage.
func NewNavigation(ctx context.Context, storage store.Storage) (*Navigation, error) {
	page, err := store.NewPersisted(ctx, storage, KeyPage, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load navigation state: %w", err)
	}

	keyword, err := store.NewPersisted(ctx, storage, KeyKeyword, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load navigation state: %w", err)
	}

	return &Navigation{page: page, keyword: keyword}, nil
}

func (n *Navigation) Page() int {
	return n.page.Get()
}

func (n *Navigation) SetPage(ctx context.Context, page int) error {
	return n.page.Set(ctx, page)
}

func (n *Navigation) Keyword() string {
	return n.keyword.Get()
}

func (n *Navigation) SetKeyword(ctx context.Context, keyword string) error {
	return n.keyword.Set(ctx, keyword)
}

// SubscribePage observes page changes.
func (n *Navigation) SubscribePage(fn func(int)) func() {
	return n.page.Subscribe(fn)
}

// SubscribeKeyword observes keyword changes.
func (n *Navigation) SubscribeKeyword(fn func(string)) func() {
	return n.keyword.Subscribe(fn)
}
