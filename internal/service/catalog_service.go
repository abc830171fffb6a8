package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/anthony-1214/shop-service/internal/domain"
	"github.com/anthony-1214/shop-service/internal/repository"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductExists     = errors.New("product already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type CatalogService struct {
	catalog repository.CatalogStore
	logger  *zap.Logger
}

func NewCatalogService(catalog repository.CatalogStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		logger:  logger,
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	size := req.Size
	if size == "" {
		size = domain.DefaultSize
	}

	product := &domain.Product{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     domain.RoundMoney(req.Price),
		Size:      size,
		Stock:     req.Stock,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.catalog.CreateProduct(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductExists) {
			return nil, ErrProductExists
		}
		s.logger.Error("Failed to save product",
			zap.String("product_id", product.ProductID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Product created successfully",
		zap.String("product_id", product.ProductID),
		zap.Int("initial_stock", product.Stock))

	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.catalog.ListProducts(ctx)
}

func (s *CatalogService) DeductStock(ctx context.Context, productID string, quantity int, policy domain.StockPolicy) (*domain.StockDeductionResponse, error) {
	deducted, newStock, err := s.catalog.DecrementStock(ctx, productID, quantity, policy)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, ErrInsufficientStock
		}
		return nil, err
	}

	result := &domain.StockDeductionResponse{
		ProductID:     productID,
		PreviousStock: newStock + deducted,
		NewStock:      newStock,
		Deducted:      deducted,
	}

	s.logger.Info("Stock deducted successfully",
		zap.String("product_id", productID),
		zap.Int("previous_stock", result.PreviousStock),
		zap.Int("deducted", deducted),
		zap.Int("new_stock", newStock))

	return result, nil
}
