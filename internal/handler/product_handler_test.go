package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anthony-1214/shop-service/internal/domain"
	"github.com/anthony-1214/shop-service/internal/repository"
	"github.com/anthony-1214/shop-service/internal/service"
)

func productRouter(t *testing.T, policy domain.StockPolicy) (*gin.Engine, *repository.MemoryCatalogStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryCatalogStore()
	h := NewProductHandler(service.NewCatalogService(store, zap.NewNop()), policy, zap.NewNop())

	router := gin.New()
	router.POST("/products", h.CreateProduct)
	router.POST("/products/:id/deduct", h.DeductStock)
	return router, store
}

func seedCatalog(t *testing.T, store *repository.MemoryCatalogStore, id string, stock int) {
	t.Helper()
	err := store.CreateProduct(context.Background(), &domain.Product{
		ProductID: id, Name: id, Price: 30, Size: domain.DefaultSize, Stock: stock,
	})
	require.NoError(t, err)
}

func TestCreateProductAllowsZeroPrice(t *testing.T) {
	router, store := productRouter(t, domain.StockClamp)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products",
		strings.NewReader(`{"product_id":"sample","name":"Sample","price":0,"stock":3}`))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	p, err := store.GetProduct(context.Background(), "sample")
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Price)
}

func TestDeductStockEndpoint(t *testing.T) {
	router, store := productRouter(t, domain.StockClamp)
	seedCatalog(t, store, "tea", 10)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products/tea/deduct",
		strings.NewReader(`{"quantity":4}`))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"new_stock":6`)
	assert.Contains(t, w.Body.String(), `"deducted":4`)

	p, err := store.GetProduct(context.Background(), "tea")
	require.NoError(t, err)
	assert.Equal(t, 6, p.Stock)
}

func TestDeductStockEndpointStrictInsufficient(t *testing.T) {
	router, store := productRouter(t, domain.StockStrict)
	seedCatalog(t, store, "tea", 3)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products/tea/deduct",
		strings.NewReader(`{"quantity":5}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	p, err := store.GetProduct(context.Background(), "tea")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestDeductStockEndpointUnknownProduct(t *testing.T) {
	router, _ := productRouter(t, domain.StockClamp)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products/ghost/deduct",
		strings.NewReader(`{"quantity":1}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeductStockEndpointRejectsBadQuantity(t *testing.T) {
	router, store := productRouter(t, domain.StockClamp)
	seedCatalog(t, store, "tea", 10)

	for _, body := range []string{`{"quantity":0}`, `{"quantity":-2}`, `{}`, `not json`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/products/tea/deduct",
			strings.NewReader(body))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	p, err := store.GetProduct(context.Background(), "tea")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock)
}
