package api

import (
	"context"
	"sync"

	"github.com/Wang-tianhao/storefront-api/internal/store"
)

// spyCollection records every call before delegating to an in-memory
// collection. Setting fail makes every call return that error.
type spyCollection struct {
	mu      sync.Mutex
	inner   store.Collection
	calls   []string
	filters []store.Filter
	fail    error
}

func newSpyCollection() *spyCollection {
	return &spyCollection{inner: store.NewMemoryCollection()}
}

func (s *spyCollection) record(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, op)
	return s.fail
}

func (s *spyCollection) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *spyCollection) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
	s.filters = nil
}

func (s *spyCollection) Find(ctx context.Context, filter store.Filter) ([]store.Document, error) {
	if err := s.record("find"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.filters = append(s.filters, filter)
	s.mu.Unlock()
	return s.inner.Find(ctx, filter)
}

func (s *spyCollection) FindByID(ctx context.Context, id string) (store.Document, error) {
	if err := s.record("findOne"); err != nil {
		return nil, err
	}
	return s.inner.FindByID(ctx, id)
}

func (s *spyCollection) Insert(ctx context.Context, doc store.Document) (store.InsertResult, error) {
	if err := s.record("insert"); err != nil {
		return store.InsertResult{}, err
	}
	return s.inner.Insert(ctx, doc)
}

func (s *spyCollection) UpdateByID(ctx context.Context, id string, set store.Document, upsert bool) (store.UpdateResult, error) {
	if err := s.record("update"); err != nil {
		return store.UpdateResult{}, err
	}
	return s.inner.UpdateByID(ctx, id, set, upsert)
}

func (s *spyCollection) DeleteByID(ctx context.Context, id string) (store.DeleteResult, error) {
	if err := s.record("delete"); err != nil {
		return store.DeleteResult{}, err
	}
	return s.inner.DeleteByID(ctx, id)
}
