package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/anthony-1214/shop-service/internal/domain"
)

// The memory and DynamoDB stores collect unordered items and rely on these
// helpers so every backend lists newest first, like the SQL ORDER BY.
func TestSortProductsNewestFirst(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	products := []domain.Product{
		{ProductID: "oldest", CreatedAt: base},
		{ProductID: "newest", CreatedAt: base.Add(2 * time.Hour)},
		{ProductID: "middle", CreatedAt: base.Add(time.Hour)},
	}

	sortProductsNewestFirst(products)

	got := []string{products[0].ProductID, products[1].ProductID, products[2].ProductID}
	assert.Equal(t, []string{"newest", "middle", "oldest"}, got)
}

func TestSortOrdersNewestFirst(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		{OrderID: "b", CreatedAt: base.Add(time.Minute)},
		{OrderID: "a", CreatedAt: base},
		{OrderID: "c", CreatedAt: base.Add(2 * time.Minute)},
	}

	sortOrdersNewestFirst(orders)

	got := []string{orders[0].OrderID, orders[1].OrderID, orders[2].OrderID}
	assert.Equal(t, []string{"c", "b", "a"}, got)
}
