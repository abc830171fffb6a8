package cart

import (
	"context"
	"sync"

	"github.com/anthony-1214/shop-service/internal/domain"
)

// MemoryStore holds carts in process memory. Carts are session-scoped so
// there is no cross-session contention; the RWMutex only guards the outer
// map against concurrent sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[string]map[string]int),
	}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart := domain.NewCart(sessionID)
	for id, qty := range s.carts[sessionID] {
		cart.Lines[id] = qty
	}
	return cart, nil
}

func (s *MemoryStore) Add(ctx context.Context, sessionID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines(sessionID)[productID]++
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, sessionID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lines(sessionID), productID)
	return nil
}

func (s *MemoryStore) SetQty(ctx context.Context, sessionID, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if qty <= 0 {
		delete(s.lines(sessionID), productID)
		return nil
	}
	s.lines(sessionID)[productID] = qty
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = make(map[string]int)
	return nil
}

// lines returns the session's line map, creating it on first access.
// Callers must hold the write lock.
func (s *MemoryStore) lines(sessionID string) map[string]int {
	lines, ok := s.carts[sessionID]
	if !ok {
		lines = make(map[string]int)
		s.carts[sessionID] = lines
	}
	return lines
}
