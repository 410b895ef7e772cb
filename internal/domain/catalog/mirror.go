package catalog

import (
	"context"
	"sort"
	"sync"

	"shoptill/internal/core/id"
	"shoptill/pkg/logger"
)

// Mirror is a read-only, live-updated local view of the item catalog.
// It caches the latest observed snapshot keyed by item ID and refreshes
// on every change notification from the Feed (last-write-wins per item).
// There is no mutation API; all catalog writes go through the item
// service or the finalization pipeline.
type Mirror struct {
	repo Repository
	feed Feed

	mu        sync.RWMutex
	items     map[id.ID]Item
	observers []func([]Item)
}

// NewMirror creates a mirror over repo. feed may be nil, in which case
// only explicit Refresh calls update the cache.
func NewMirror(repo Repository, feed Feed) *Mirror {
	return &Mirror{
		repo:  repo,
		feed:  feed,
		items: make(map[id.ID]Item),
	}
}

// Refresh reloads the full item set from the repository.
func (m *Mirror) Refresh(ctx context.Context) error {
	items, err := m.repo.List(ctx)
	if err != nil {
		return err
	}

	snapshot := make(map[id.ID]Item, len(items))
	for _, item := range items {
		snapshot[item.ID] = item
	}

	m.mu.Lock()
	m.items = snapshot
	observers := m.observers
	m.mu.Unlock()

	if len(observers) > 0 {
		current := m.CurrentItems()
		for _, fn := range observers {
			fn(current)
		}
	}
	return nil
}

// Run loads the initial snapshot and then follows the change feed until
// ctx is cancelled. Refresh failures are logged and the subscription
// keeps going; the mirror serves the last good snapshot meanwhile.
func (m *Mirror) Run(ctx context.Context) error {
	if err := m.Refresh(ctx); err != nil {
		return err
	}
	if m.feed == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.feed.Subscribe(ctx, func(ctx context.Context) {
		if err := m.Refresh(ctx); err != nil {
			logger.Error(ctx, "catalog mirror refresh failed", "error", err)
		}
	})
}

// CurrentItems returns the latest observed snapshot, sorted by name.
func (m *Mirror) CurrentItems() []Item {
	m.mu.RLock()
	out := make([]Item, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the cached item for itemID.
func (m *Mirror) Get(itemID id.ID) (Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[itemID]
	return item, ok
}

// OnChange registers a callback invoked with the full item set after
// every refresh.
func (m *Mirror) OnChange(fn func([]Item)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}
