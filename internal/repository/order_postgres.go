package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anthony-1214/shop-service/internal/domain"
)

type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

// CreateOrder persists the header, the items, and the per-line stock
// decrements in one transaction. Row locks taken by the stock UPDATEs
// serialize racing checkouts on the same products; any failure rolls the
// whole order back.
func (s *PostgresOrderStore) CreateOrder(ctx context.Context, order *domain.Order, policy domain.StockPolicy) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("CreateOrder begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, customer_name, customer_email, total, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		order.OrderID, order.CustomerName, order.CustomerEmail, order.Total, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("CreateOrder header: %w", err)
	}

	for i, item := range order.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, position, product_id, name, qty, unit_price, subtotal)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			order.OrderID, i, item.ProductID, item.Name, item.Qty, item.UnitPrice, item.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("CreateOrder item %s: %w", item.ProductID, err)
		}

		if _, _, err := decrementStockTx(ctx, tx, item.ProductID, item.Qty, policy); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("CreateOrder commit: %w", err)
	}
	return nil
}

func (s *PostgresOrderStore) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	err := s.db.QueryRowContext(ctx,
		`SELECT id, customer_name, customer_email, total, created_at
		 FROM orders WHERE id = $1`,
		orderID,
	).Scan(&order.OrderID, &order.CustomerName, &order.CustomerEmail, &order.Total, &order.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetOrder query: %w", err)
	}

	items, err := s.itemsFor(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (s *PostgresOrderStore) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_name, customer_email, total, created_at
		 FROM orders ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListOrders query: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.OrderID, &o.CustomerName, &o.CustomerEmail, &o.Total, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListOrders scan: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := s.itemsFor(ctx, orders[i].OrderID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (s *PostgresOrderStore) itemsFor(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, name, qty, unit_price, subtotal
		 FROM order_items WHERE order_id = $1 ORDER BY position`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("order items query: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Qty, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("order items scan: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
