package billing

import (
	"sync"
)

// DraftStore keeps one draft per register session, keyed by operator.
// Drafts are immutable values; Update swaps the stored value wholesale,
// so readers never observe a half-applied mutation.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[string]Draft
}

// NewDraftStore creates an empty store.
func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string]Draft)}
}

// Get returns the current draft for key, an empty draft when none exists.
func (s *DraftStore) Get(key string) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts[key]
}

// Update applies fn to the current draft and stores the result. When fn
// fails the stored draft is left unchanged.
func (s *DraftStore) Update(key string, fn func(Draft) (Draft, error)) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.drafts[key])
	if err != nil {
		return s.drafts[key], err
	}
	s.drafts[key] = next
	return next, nil
}

// Reset discards the draft for key.
func (s *DraftStore) Reset(key string) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := NewDraft()
	s.drafts[key] = fresh
	return fresh
}
