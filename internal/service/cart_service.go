package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/anthony-1214/shop-service/internal/cart"
	"github.com/anthony-1214/shop-service/internal/domain"
)

// CartService fronts the session cart store. Cart mutations never fail on
// unknown product ids; the checkout service resolves them against the
// catalog later.
type CartService struct {
	carts  cart.Store
	logger *zap.Logger
}

func NewCartService(carts cart.Store, logger *zap.Logger) *CartService {
	return &CartService{
		carts:  carts,
		logger: logger,
	}
}

func (s *CartService) View(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return s.carts.Get(ctx, sessionID)
}

func (s *CartService) Add(ctx context.Context, sessionID, productID string) error {
	if err := s.carts.Add(ctx, sessionID, productID); err != nil {
		return err
	}
	s.logger.Debug("Cart line added",
		zap.String("session_id", sessionID),
		zap.String("product_id", productID))
	return nil
}

func (s *CartService) Remove(ctx context.Context, sessionID, productID string) error {
	return s.carts.Remove(ctx, sessionID, productID)
}

func (s *CartService) SetQty(ctx context.Context, sessionID, productID string, qty int) error {
	return s.carts.SetQty(ctx, sessionID, productID, qty)
}
