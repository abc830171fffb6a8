package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthony-1214/shop-service/internal/domain"
)

func testOrder(id string, items ...domain.OrderItem) *domain.Order {
	total := 0.0
	for _, it := range items {
		total += it.Subtotal
	}
	return &domain.Order{
		OrderID:       id,
		CustomerName:  "Anthony",
		CustomerEmail: "anthony@example.com",
		Total:         domain.RoundMoney(total),
		Items:         items,
		CreatedAt:     time.Now(),
	}
}

func TestMemoryOrderStoreStrictFailureLeavesNoPartialState(t *testing.T) {
	catalog := NewMemoryCatalogStore()
	seedProduct(t, catalog, "p1", 10, 5)
	seedProduct(t, catalog, "p2", 20, 1)
	orders := NewMemoryOrderStore(catalog)

	order := testOrder("o1",
		domain.OrderItem{ProductID: "p1", Name: "Product p1", Qty: 2, UnitPrice: 10, Subtotal: 20},
		domain.OrderItem{ProductID: "p2", Name: "Product p2", Qty: 3, UnitPrice: 20, Subtotal: 60},
	)
	err := orders.CreateOrder(context.Background(), order, domain.StockStrict)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Neither line may have been applied and no order may exist.
	p1, _ := catalog.GetProduct(context.Background(), "p1")
	p2, _ := catalog.GetProduct(context.Background(), "p2")
	assert.Equal(t, 5, p1.Stock)
	assert.Equal(t, 1, p2.Stock)

	_, err = orders.GetOrder(context.Background(), "o1")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	list, err := orders.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryOrderStoreMissingProductAborts(t *testing.T) {
	catalog := NewMemoryCatalogStore()
	seedProduct(t, catalog, "p1", 10, 5)
	orders := NewMemoryOrderStore(catalog)

	order := testOrder("o1",
		domain.OrderItem{ProductID: "p1", Name: "Product p1", Qty: 1, UnitPrice: 10, Subtotal: 10},
		domain.OrderItem{ProductID: "ghost", Name: "Ghost", Qty: 1, UnitPrice: 1, Subtotal: 1},
	)
	err := orders.CreateOrder(context.Background(), order, domain.StockClamp)
	assert.ErrorIs(t, err, ErrProductNotFound)

	p1, _ := catalog.GetProduct(context.Background(), "p1")
	assert.Equal(t, 5, p1.Stock)
}

func TestMemoryOrderStoreCreateAndRead(t *testing.T) {
	catalog := NewMemoryCatalogStore()
	seedProduct(t, catalog, "p1", 12.5, 5)
	orders := NewMemoryOrderStore(catalog)

	order := testOrder("o1",
		domain.OrderItem{ProductID: "p1", Name: "Product p1", Qty: 2, UnitPrice: 12.5, Subtotal: 25},
	)
	require.NoError(t, orders.CreateOrder(context.Background(), order, domain.StockClamp))

	got, err := orders.GetOrder(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, 25.0, got.Total)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 12.5, got.Items[0].UnitPrice)

	p1, _ := catalog.GetProduct(context.Background(), "p1")
	assert.Equal(t, 3, p1.Stock)
}

// Two strict checkouts racing for the last unit: exactly one order lands.
func TestMemoryOrderStoreConcurrentLastUnit(t *testing.T) {
	catalog := NewMemoryCatalogStore()
	seedProduct(t, catalog, "p1", 10, 1)
	orders := NewMemoryOrderStore(catalog)

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			order := testOrder("o"+string(rune('0'+n)),
				domain.OrderItem{ProductID: "p1", Name: "Product p1", Qty: 1, UnitPrice: 10, Subtotal: 10},
			)
			errs[n] = orders.CreateOrder(context.Background(), order, domain.StockStrict)
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, won)

	p1, _ := catalog.GetProduct(context.Background(), "p1")
	assert.Equal(t, 0, p1.Stock)

	list, err := orders.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
