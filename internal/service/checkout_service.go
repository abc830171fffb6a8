package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anthony-1214/shop-service/internal/cart"
	"github.com/anthony-1214/shop-service/internal/domain"
	"github.com/anthony-1214/shop-service/internal/repository"
)

var (
	// ErrEmptyCart means there was nothing to check out, either because the
	// cart had no lines or because every line referenced a missing product.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPersistenceFailure means the atomic persist step could not
	// complete. The cart is left untouched, so retrying is safe.
	ErrPersistenceFailure = errors.New("failed to persist order")
)

// OrderEventPublisher receives a notification after an order has been
// committed. Publishing is best effort and never affects the checkout
// result.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
}

// CheckoutService reconciles a session cart against the live catalog and
// produces an immutable, price-snapshotted order. It is the only component
// that constructs orders.
type CheckoutService struct {
	carts     cart.Store
	catalog   repository.CatalogStore
	orders    repository.OrderStore
	publisher OrderEventPublisher
	missing   domain.MissingLinePolicy
	stock     domain.StockPolicy
	logger    *zap.Logger
}

func NewCheckoutService(
	carts cart.Store,
	catalog repository.CatalogStore,
	orders repository.OrderStore,
	publisher OrderEventPublisher,
	missing domain.MissingLinePolicy,
	stock domain.StockPolicy,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		catalog:   catalog,
		orders:    orders,
		publisher: publisher,
		missing:   missing,
		stock:     stock,
		logger:    logger,
	}
}

// Checkout builds and persists an order from the session's cart.
//
// Prices and names are snapshotted from the catalog at this moment; the
// order header, its items, and the stock decrements are persisted as one
// atomic unit. On any failure the cart is left as it was, so the caller can
// retry the whole operation. The cart is cleared only after the order has
// been committed.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, req domain.CheckoutRequest) (*domain.Order, error) {
	sessionCart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	if sessionCart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	ids := make([]string, 0, len(sessionCart.Lines))
	for id := range sessionCart.Lines {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	products, err := s.catalog.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	items := make([]domain.OrderItem, 0, len(ids))
	total := 0.0
	for _, id := range ids {
		product, ok := products[id]
		if !ok {
			if s.missing == domain.MissingFail {
				return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
			}
			s.logger.Warn("Skipping unresolved cart line",
				zap.String("session_id", sessionID),
				zap.String("product_id", id))
			continue
		}

		qty := sessionCart.Lines[id]
		subtotal := domain.RoundMoney(float64(qty) * product.Price)
		items = append(items, domain.OrderItem{
			ProductID: id,
			Name:      product.Name,
			Qty:       qty,
			UnitPrice: product.Price,
			Subtotal:  subtotal,
		})
		total += subtotal
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &domain.Order{
		OrderID:       uuid.New().String(),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Total:         domain.RoundMoney(total),
		Items:         items,
		CreatedAt:     time.Now(),
	}

	if err := s.orders.CreateOrder(ctx, order, s.stock); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, ErrInsufficientStock
		}
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrProductNotFound, err)
		}
		s.logger.Error("Failed to persist order",
			zap.String("order_id", order.OrderID),
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		// The order is committed; a stale cart is recoverable, losing the
		// order is not.
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("session_id", sessionID),
			zap.String("order_id", order.OrderID),
			zap.Error(err))
	}

	s.logger.Info("Checkout completed",
		zap.String("order_id", order.OrderID),
		zap.String("session_id", sessionID),
		zap.Int("items", len(order.Items)),
		zap.Float64("total", order.Total))

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
			s.logger.Warn("Failed to publish order event",
				zap.String("order_id", order.OrderID),
				zap.Error(err))
		}
	}

	return order, nil
}

func (s *CheckoutService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.orders.GetOrder(ctx, orderID)
}

func (s *CheckoutService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListOrders(ctx)
}
