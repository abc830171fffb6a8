package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthony-1214/shop-service/internal/domain"
)

func seedProduct(t *testing.T, store *MemoryCatalogStore, id string, price float64, stock int) {
	t.Helper()
	err := store.CreateProduct(context.Background(), &domain.Product{
		ProductID: id,
		Name:      "Product " + id,
		Price:     price,
		Size:      domain.DefaultSize,
		Stock:     stock,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	require.NoError(t, err)
}

func TestMemoryCatalogCreateDuplicate(t *testing.T) {
	store := NewMemoryCatalogStore()
	seedProduct(t, store, "p1", 10, 5)

	err := store.CreateProduct(context.Background(), &domain.Product{ProductID: "p1"})
	assert.ErrorIs(t, err, ErrProductExists)
}

func TestMemoryCatalogGetManyOmitsMissing(t *testing.T) {
	store := NewMemoryCatalogStore()
	seedProduct(t, store, "p1", 10, 5)
	seedProduct(t, store, "p2", 20, 5)

	found, err := store.GetMany(context.Background(), []string{"p1", "ghost", "p2"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Contains(t, found, "p1")
	assert.Contains(t, found, "p2")
	assert.NotContains(t, found, "ghost")
}

func TestDecrementStockClampNeverGoesNegative(t *testing.T) {
	store := NewMemoryCatalogStore()
	seedProduct(t, store, "p1", 10, 3)

	deducted, newStock, err := store.DecrementStock(context.Background(), "p1", 5, domain.StockClamp)
	require.NoError(t, err)
	assert.Equal(t, 3, deducted)
	assert.Equal(t, 0, newStock)

	// Decrementing an exhausted product deducts nothing.
	deducted, newStock, err = store.DecrementStock(context.Background(), "p1", 1, domain.StockClamp)
	require.NoError(t, err)
	assert.Equal(t, 0, deducted)
	assert.Equal(t, 0, newStock)
}

func TestDecrementStockStrictRejectsInsufficient(t *testing.T) {
	store := NewMemoryCatalogStore()
	seedProduct(t, store, "p1", 10, 3)

	_, _, err := store.DecrementStock(context.Background(), "p1", 5, domain.StockStrict)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// The failed decrement must not have touched the stock.
	p, err := store.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestDecrementStockMissingProduct(t *testing.T) {
	store := NewMemoryCatalogStore()

	_, _, err := store.DecrementStock(context.Background(), "ghost", 1, domain.StockClamp)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

// N concurrent decrements of qty=1 against stock=K must leave
// stock = max(0, K-N) with exactly min(N, K) of them deducting a unit.
func TestDecrementStockConcurrent(t *testing.T) {
	cases := []struct {
		name  string
		stock int
		procs int
	}{
		{"more demand than stock", 10, 50},
		{"exact", 25, 25},
		{"more stock than demand", 100, 30},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewMemoryCatalogStore()
			seedProduct(t, store, "p1", 10, tc.stock)

			var succeeded int64
			var wg sync.WaitGroup
			for i := 0; i < tc.procs; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					deducted, _, err := store.DecrementStock(context.Background(), "p1", 1, domain.StockClamp)
					if err == nil && deducted == 1 {
						atomic.AddInt64(&succeeded, 1)
					}
				}()
			}
			wg.Wait()

			wantStock := tc.stock - tc.procs
			if wantStock < 0 {
				wantStock = 0
			}
			wantSucceeded := tc.procs
			if tc.stock < tc.procs {
				wantSucceeded = tc.stock
			}

			p, err := store.GetProduct(context.Background(), "p1")
			require.NoError(t, err)
			assert.Equal(t, wantStock, p.Stock)
			assert.Equal(t, int64(wantSucceeded), succeeded)
		})
	}
}
