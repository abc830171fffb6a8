package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/anthony-1214/shop-service/internal/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductExists     = errors.New("product already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
)

// CatalogStore is the persistence contract for products. GetMany and
// DecrementStock are the two operations checkout depends on; the rest is
// the admin surface. Stock mutation must be atomic per product with respect
// to concurrent decrements.
type CatalogStore interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	// GetMany returns only the products that exist; missing ids are
	// silently omitted and the caller detects gaps.
	GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error)
	// DecrementStock lowers stock by qty under the given policy and
	// returns the amount actually deducted and the remaining stock.
	DecrementStock(ctx context.Context, productID string, qty int, policy domain.StockPolicy) (deducted, newStock int, err error)
}

// OrderStore persists orders. CreateOrder writes the order header, its
// items, and the per-line stock decrements as one atomic unit: either all
// of it becomes visible or none of it does.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order, policy domain.StockPolicy) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// DocumentCollection is a schemaless document sink for the batch importer.
// Inserted documents receive store-assigned ids; there is no relational
// integrity between documents.
type DocumentCollection interface {
	InsertMany(ctx context.Context, docs []map[string]interface{}) (int, error)
	DeleteMany(ctx context.Context, ids []string) (int, error)
	ListDocuments(ctx context.Context) ([]map[string]interface{}, error)
}

// Listings are newest first on every backend. The SQL store orders in the
// query; the memory and DynamoDB stores sort the collected slice here.
func sortProductsNewestFirst(products []domain.Product) {
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}

func sortOrdersNewestFirst(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
