package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/anthony-1214/shop-service/internal/domain"
)

type PostgresCatalogStore struct {
	db *sql.DB
}

func NewPostgresCatalogStore(db *sql.DB) *PostgresCatalogStore {
	return &PostgresCatalogStore{db: db}
}

func (s *PostgresCatalogStore) CreateProduct(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, price, size, stock, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query,
		product.ProductID, product.Name, product.Price, product.Size,
		product.Stock, product.ImageURL, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("CreateProduct: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("CreateProduct rows affected: %w", err)
	}
	if rows == 0 {
		return ErrProductExists
	}
	return nil
}

func (s *PostgresCatalogStore) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	query := `
		SELECT id, name, price, size, stock, image_url, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p domain.Product
	err := s.db.QueryRowContext(ctx, query, productID).Scan(
		&p.ProductID, &p.Name, &p.Price, &p.Size, &p.Stock,
		&p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetProduct query: %w", err)
	}

	return &p, nil
}

func (s *PostgresCatalogStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, price, size, stock, image_url, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListProducts query: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ProductID, &p.Name, &p.Price, &p.Size, &p.Stock,
			&p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ListProducts scan: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (s *PostgresCatalogStore) GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	query := `
		SELECT id, name, price, size, stock, image_url, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
	`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("GetMany query: %w", err)
	}
	defer rows.Close()

	found := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ProductID, &p.Name, &p.Price, &p.Size, &p.Stock,
			&p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("GetMany scan: %w", err)
		}
		found[p.ProductID] = p
	}

	return found, rows.Err()
}

func (s *PostgresCatalogStore) DecrementStock(ctx context.Context, productID string, qty int, policy domain.StockPolicy) (int, int, error) {
	return decrementStockTx(ctx, s.db, productID, qty, policy)
}

// queryer covers both *sql.DB and *sql.Tx so the same decrement runs
// standalone and inside the checkout transaction.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// decrementStockTx serializes on the product row: UPDATE takes a row lock,
// so concurrent decrements on the same product queue up and the stock CHECK
// plus the guarded expressions keep it from ever going negative.
func decrementStockTx(ctx context.Context, q queryer, productID string, qty int, policy domain.StockPolicy) (int, int, error) {
	if policy == domain.StockStrict {
		query := `
			UPDATE products
			SET stock = stock - $2, updated_at = now()
			WHERE id = $1 AND stock >= $2
			RETURNING stock
		`
		var newStock int
		err := q.QueryRowContext(ctx, query, productID, qty).Scan(&newStock)
		if err == sql.ErrNoRows {
			// Either the product is gone or the guard failed.
			var exists bool
			if checkErr := q.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID,
			).Scan(&exists); checkErr != nil {
				return 0, 0, fmt.Errorf("DecrementStock existence check: %w", checkErr)
			}
			if !exists {
				return 0, 0, ErrProductNotFound
			}
			return 0, 0, ErrInsufficientStock
		}
		if err != nil {
			return 0, 0, fmt.Errorf("DecrementStock: %w", err)
		}
		return qty, newStock, nil
	}

	// RETURNING sees the post-update row; the self-join exposes the previous
	// stock so the deducted amount can be reported.
	query := `
		UPDATE products AS p
		SET stock = GREATEST(p.stock - $2, 0), updated_at = now()
		FROM products AS old
		WHERE p.id = $1 AND old.id = p.id
		RETURNING old.stock, p.stock
	`
	var previous, newStock int
	err := q.QueryRowContext(ctx, query, productID, qty).Scan(&previous, &newStock)
	if err == sql.ErrNoRows {
		return 0, 0, ErrProductNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("DecrementStock: %w", err)
	}

	return previous - newStock, newStock, nil
}
