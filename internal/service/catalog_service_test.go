package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anthony-1214/shop-service/internal/domain"
	"github.com/anthony-1214/shop-service/internal/repository"
)

func TestCreateProductDefaultsAndDuplicate(t *testing.T) {
	svc := NewCatalogService(repository.NewMemoryCatalogStore(), zap.NewNop())
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, domain.CreateProductRequest{
		ProductID: "tea",
		Name:      "Tea",
		Price:     30.004,
		Stock:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSize, product.Size)
	assert.Equal(t, 30.0, product.Price)

	_, err = svc.CreateProduct(ctx, domain.CreateProductRequest{
		ProductID: "tea",
		Name:      "Tea again",
		Price:     1,
	})
	assert.ErrorIs(t, err, ErrProductExists)
}

func TestGetProductNotFound(t *testing.T) {
	svc := NewCatalogService(repository.NewMemoryCatalogStore(), zap.NewNop())

	_, err := svc.GetProduct(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeductStockReportsPreviousAndNew(t *testing.T) {
	store := repository.NewMemoryCatalogStore()
	svc := NewCatalogService(store, zap.NewNop())
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, domain.CreateProductRequest{
		ProductID: "tea", Name: "Tea", Price: 30, Stock: 10,
	})
	require.NoError(t, err)

	result, err := svc.DeductStock(ctx, "tea", 4, domain.StockClamp)
	require.NoError(t, err)
	assert.Equal(t, 10, result.PreviousStock)
	assert.Equal(t, 6, result.NewStock)
	assert.Equal(t, 4, result.Deducted)

	_, err = svc.DeductStock(ctx, "tea", 100, domain.StockStrict)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}
