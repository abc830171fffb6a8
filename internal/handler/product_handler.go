package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anthony-1214/shop-service/internal/domain"
	"github.com/anthony-1214/shop-service/internal/service"
)

type ProductHandler struct {
	catalogService *service.CatalogService
	stockPolicy    domain.StockPolicy
	logger         *zap.Logger
}

func NewProductHandler(catalogService *service.CatalogService, stockPolicy domain.StockPolicy, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		stockPolicy:    stockPolicy,
		logger:         logger,
	}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req domain.CreateProductRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrProductExists) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Product already exists",
			})
			return
		}

		h.logger.Error("Failed to create product",
			zap.String("product_id", req.ProductID),
			zap.Error(err))

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create product",
		})
		return
	}

	c.JSON(http.StatusCreated, productResponse(product))
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID := c.Param("id")

	product, err := h.catalogService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}

		h.logger.Error("Failed to get product",
			zap.String("product_id", productID),
			zap.Error(err))

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get product",
		})
		return
	}

	c.JSON(http.StatusOK, productResponse(product))
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list products",
		})
		return
	}

	responses := make([]domain.ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, productResponse(&products[i]))
	}
	c.JSON(http.StatusOK, gin.H{"products": responses})
}

// DeductStock is the admin-facing stock adjustment; it runs under the same
// stock policy checkout uses.
func (h *ProductHandler) DeductStock(c *gin.Context) {
	productID := c.Param("id")

	var req domain.DeductStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.catalogService.DeductStock(c.Request.Context(), productID, req.Quantity, h.stockPolicy)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}

		if errors.Is(err, service.ErrInsufficientStock) {
			c.JSON(http.StatusConflict, gin.H{
				"error":     "Insufficient stock",
				"requested": req.Quantity,
			})
			return
		}

		h.logger.Error("Failed to deduct stock",
			zap.String("product_id", productID),
			zap.Error(err))

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to deduct stock",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

func productResponse(p *domain.Product) domain.ProductResponse {
	return domain.ProductResponse{
		ProductID: p.ProductID,
		Name:      p.Name,
		Price:     p.Price,
		Size:      p.Size,
		Stock:     p.Stock,
		ImageURL:  p.ImageURL,
	}
}
