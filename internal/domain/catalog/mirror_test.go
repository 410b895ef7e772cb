package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoptill/internal/core/id"
	"shoptill/internal/core/types"
)

type memoryRepo struct {
	mu    sync.Mutex
	items map[id.ID]Item
	err   error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[id.ID]Item)}
}

func (r *memoryRepo) put(item Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
}

func (r *memoryRepo) Create(ctx context.Context, item *Item) error {
	r.put(*item)
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, item *Item) error {
	r.put(*item)
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok {
		return nil, context.Canceled
	}
	return &item, nil
}

func (r *memoryRepo) List(ctx context.Context) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]Item, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	return out, nil
}

func (r *memoryRepo) SoftDelete(ctx context.Context, itemID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.items[itemID]
	item.DeletionMark = true
	r.items[itemID] = item
	return nil
}

func (r *memoryRepo) DecrementStock(ctx context.Context, itemID id.ID, qty int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.items[itemID]
	item.StockQuantity -= qty
	r.items[itemID] = item
	return item.StockQuantity, nil
}

func (r *memoryRepo) AddStock(ctx context.Context, itemID id.ID, qty int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.items[itemID]
	item.StockQuantity += qty
	r.items[itemID] = item
	return item.StockQuantity, nil
}

func (r *memoryRepo) FindLowStock(ctx context.Context) ([]Item, error) {
	return nil, nil
}

// channelFeed delivers one change notification per value sent on ch.
type channelFeed struct {
	ch chan struct{}
}

func (f *channelFeed) Subscribe(ctx context.Context, fn func(ctx context.Context)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-f.ch:
			if !ok {
				return nil
			}
			fn(ctx)
		}
	}
}

func mirrorItem(name, price string, stock int64) Item {
	item := NewItem(name, types.MustMoney(price), stock, 0)
	return *item
}

func TestMirrorRefreshLoadsSnapshot(t *testing.T) {
	repo := newMemoryRepo()
	soap := mirrorItem("Soap", "250.00", 10)
	tea := mirrorItem("Tea", "120.00", 4)
	repo.put(soap)
	repo.put(tea)

	m := NewMirror(repo, nil)
	require.NoError(t, m.Refresh(context.Background()))

	got, ok := m.Get(soap.ID)
	require.True(t, ok)
	assert.Equal(t, int64(10), got.StockQuantity)

	items := m.CurrentItems()
	require.Len(t, items, 2)
	assert.Equal(t, "Soap", items[0].Name)
	assert.Equal(t, "Tea", items[1].Name)
}

func TestMirrorLastWriteWins(t *testing.T) {
	repo := newMemoryRepo()
	soap := mirrorItem("Soap", "250.00", 10)
	repo.put(soap)

	m := NewMirror(repo, nil)
	ctx := context.Background()
	require.NoError(t, m.Refresh(ctx))

	soap.StockQuantity = 3
	soap.UnitPrice = types.MustMoney("275.00")
	repo.put(soap)
	require.NoError(t, m.Refresh(ctx))

	got, ok := m.Get(soap.ID)
	require.True(t, ok)
	assert.Equal(t, int64(3), got.StockQuantity)
	assert.True(t, got.UnitPrice.Equal(types.MustMoney("275.00")))
}

func TestMirrorRefreshDropsRemovedItems(t *testing.T) {
	repo := newMemoryRepo()
	soap := mirrorItem("Soap", "250.00", 10)
	repo.put(soap)

	m := NewMirror(repo, nil)
	ctx := context.Background()
	require.NoError(t, m.Refresh(ctx))

	repo.mu.Lock()
	delete(repo.items, soap.ID)
	repo.mu.Unlock()
	require.NoError(t, m.Refresh(ctx))

	_, ok := m.Get(soap.ID)
	assert.False(t, ok)
	assert.Empty(t, m.CurrentItems())
}

func TestMirrorRunFollowsFeed(t *testing.T) {
	repo := newMemoryRepo()
	soap := mirrorItem("Soap", "250.00", 10)
	repo.put(soap)

	feed := &channelFeed{ch: make(chan struct{})}
	m := NewMirror(repo, feed)

	refreshed := make(chan []Item, 4)
	m.OnChange(func(items []Item) { refreshed <- items })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	// Initial snapshot from Run's first refresh.
	select {
	case items := <-refreshed:
		require.Len(t, items, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial snapshot")
	}

	soap.StockQuantity = 7
	repo.put(soap)
	feed.ch <- struct{}{}

	select {
	case items := <-refreshed:
		require.Len(t, items, 1)
		assert.Equal(t, int64(7), items[0].StockQuantity)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed refresh")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestMirrorServesLastGoodSnapshotOnRefreshFailure(t *testing.T) {
	repo := newMemoryRepo()
	soap := mirrorItem("Soap", "250.00", 10)
	repo.put(soap)

	m := NewMirror(repo, nil)
	ctx := context.Background()
	require.NoError(t, m.Refresh(ctx))

	repo.mu.Lock()
	repo.err = context.DeadlineExceeded
	repo.mu.Unlock()

	require.Error(t, m.Refresh(ctx))
	got, ok := m.Get(soap.ID)
	require.True(t, ok)
	assert.Equal(t, int64(10), got.StockQuantity)
}
