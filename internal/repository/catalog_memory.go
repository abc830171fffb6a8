package repository

import (
	"context"
	"sync"
	"time"

	"github.com/anthony-1214/shop-service/internal/domain"
)

// MemoryCatalogStore backs local mode and tests. One mutex serializes stock
// mutation, which is what keeps stock from going negative under concurrent
// decrements.
type MemoryCatalogStore struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

func NewMemoryCatalogStore() *MemoryCatalogStore {
	return &MemoryCatalogStore{
		products: make(map[string]domain.Product),
	}
}

func (s *MemoryCatalogStore) CreateProduct(ctx context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.ProductID]; exists {
		return ErrProductExists
	}
	s.products[product.ProductID] = *product
	return nil
}

func (s *MemoryCatalogStore) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (s *MemoryCatalogStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sortProductsNewestFirst(products)
	return products, nil
}

func (s *MemoryCatalogStore) GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}

func (s *MemoryCatalogStore) DecrementStock(ctx context.Context, productID string, qty int, policy domain.StockPolicy) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decrementLocked(productID, qty, policy)
}

// DeleteProduct exists for the admin surface and for exercising the
// missing-product checkout paths.
func (s *MemoryCatalogStore) DeleteProduct(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return ErrProductNotFound
	}
	delete(s.products, productID)
	return nil
}

// decrementLocked applies one decrement. Callers must hold the write lock;
// the memory order store reuses it to apply a whole checkout atomically.
func (s *MemoryCatalogStore) decrementLocked(productID string, qty int, policy domain.StockPolicy) (int, int, error) {
	p, ok := s.products[productID]
	if !ok {
		return 0, 0, ErrProductNotFound
	}

	deducted := qty
	if deducted > p.Stock {
		if policy == domain.StockStrict {
			return 0, 0, ErrInsufficientStock
		}
		deducted = p.Stock
	}

	p.Stock -= deducted
	p.UpdatedAt = time.Now()
	s.products[productID] = p
	return deducted, p.Stock, nil
}
