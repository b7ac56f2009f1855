package user

import (
	"context"
	"sync"
)

// memoryStore implements Store using in-memory storage
type memoryStore struct {
	clock Clock
	ids   IDGenerator

	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryStore creates a Store that keeps users in process memory.
func NewMemoryStore(clock Clock, ids IDGenerator) Store {
	if clock == nil {
		clock = NewSystemClock()
	}
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	return &memoryStore{
		clock: clock,
		ids:   ids,
		users: make(map[string]User),
	}
}

func (s *memoryStore) Create(ctx context.Context, input CreateInput) (User, error) {
	if input.ClerkID == "" {
		return User{}, ErrMissingClerkID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[input.ClerkID]
	if !exists {
		u.ID = s.ids.NewID()
	}
	input.apply(&u, s.clock.Now().UTC())
	s.users[input.ClerkID] = u
	return u, nil
}

func (s *memoryStore) Update(ctx context.Context, clerkID string, input UpdateInput) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[clerkID]
	if !exists {
		return User{}, ErrNotFound
	}
	input.apply(&u, s.clock.Now().UTC())
	s.users[clerkID] = u
	return u, nil
}

func (s *memoryStore) Delete(ctx context.Context, clerkID string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[clerkID]
	if !exists {
		return User{}, ErrNotFound
	}
	delete(s.users, clerkID)
	return u, nil
}

func (s *memoryStore) GetByClerkID(ctx context.Context, clerkID string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[clerkID]
	if !exists {
		return User{}, ErrNotFound
	}
	return u, nil
}
