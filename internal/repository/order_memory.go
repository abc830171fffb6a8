package repository

import (
	"context"
	"sync"

	"github.com/anthony-1214/shop-service/internal/domain"
)

// MemoryOrderStore shares the catalog's mutex so a checkout applies its
// decrements and stores the order as one atomic step, mirroring what the
// Postgres transaction and the DynamoDB transact call guarantee.
type MemoryOrderStore struct {
	mu      sync.RWMutex
	catalog *MemoryCatalogStore
	orders  map[string]domain.Order
}

func NewMemoryOrderStore(catalog *MemoryCatalogStore) *MemoryOrderStore {
	return &MemoryOrderStore{
		catalog: catalog,
		orders:  make(map[string]domain.Order),
	}
}

func (s *MemoryOrderStore) CreateOrder(ctx context.Context, order *domain.Order, policy domain.StockPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog.mu.Lock()
	defer s.catalog.mu.Unlock()

	// Validate every line before touching anything, so a failing line
	// leaves no partial decrement behind.
	for _, item := range order.Items {
		p, ok := s.catalog.products[item.ProductID]
		if !ok {
			return ErrProductNotFound
		}
		if policy == domain.StockStrict && p.Stock < item.Qty {
			return ErrInsufficientStock
		}
	}

	for _, item := range order.Items {
		if _, _, err := s.catalog.decrementLocked(item.ProductID, item.Qty, policy); err != nil {
			return err
		}
	}

	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	s.orders[order.OrderID] = stored
	return nil
}

func (s *MemoryOrderStore) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

func (s *MemoryOrderStore) ListOrders(ctx context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, o)
	}
	sortOrdersNewestFirst(orders)
	return orders, nil
}
