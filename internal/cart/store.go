package cart

import (
	"context"

	"github.com/anthony-1214/shop-service/internal/domain"
)

// Store keeps one cart per session. Carts are created empty on first
// access, so none of the operations fail on an unknown session, and
// mutations on product ids the catalog has never heard of are accepted
// here and resolved later by checkout.
type Store interface {
	// Get returns a copy of the session's cart, creating it if absent.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	// Add increments the line's qty by 1, creating it at 1 if absent.
	Add(ctx context.Context, sessionID, productID string) error
	// Remove deletes the line unconditionally.
	Remove(ctx context.Context, sessionID, productID string) error
	// SetQty sets the line's qty exactly; qty <= 0 removes the line.
	SetQty(ctx context.Context, sessionID, productID string, qty int) error
	// Clear empties the cart.
	Clear(ctx context.Context, sessionID string) error
}
