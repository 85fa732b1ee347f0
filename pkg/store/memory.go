package store

import (
	"context"
	"sort"
	"sync"

	"github.com/flowplan/flowplan/pkg/errors"
)

// MemoryStore keeps plans in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string]*Plan
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string]*Plan)}
}

// Get retrieves a plan by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, errors.New(errors.ErrCodePlanNotFound, "plan %s not found", id)
	}
	cp := *p
	return &cp, nil
}

// Put stores a plan, replacing any existing plan with the same ID.
func (s *MemoryStore) Put(ctx context.Context, plan *Plan) error {
	if plan.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "plan has no ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *plan
	s.plans[plan.ID] = &cp
	return nil
}

// Delete removes a plan.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, id)
	return nil
}

// List returns the most recently created plans, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Plan, 0, len(s.plans))
	for _, p := range s.plans {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
