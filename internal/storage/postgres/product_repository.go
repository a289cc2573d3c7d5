package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mercadinho/market-api/internal/domain"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, COALESCE(description, ''), price_cents, stock, COALESCE(image_url, ''), created_at, updated_at`

func (r *ProductRepository) CreateProduct(ctx context.Context, product domain.Product) error {
	const stmt = `
INSERT INTO products (id, name, description, price_cents, stock, image_url, created_at)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7)`

	_, err := r.exec(ctx, stmt,
		product.ID,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Stock,
		product.ImageURL,
		product.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return classify(err, "create product")
	}
	return nil
}

func (r *ProductRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	const stmt = `
UPDATE products
SET name = $2, description = NULLIF($3, ''), price_cents = $4, updated_at = $5
WHERE id = $1`

	tag, err := r.exec(ctx, stmt,
		product.ID,
		product.Name,
		product.Description,
		product.PriceCents,
		product.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return classify(err, "update product")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, productID string) error {
	const stmt = `DELETE FROM products WHERE id = $1`

	tag, err := r.exec(ctx, stmt, productID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return classify(err, "delete product")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p domain.Product
	err := r.queryRow(ctx, query, productID).
		Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Product{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, classify(err, "get product")
	}
	return p, nil
}

func (r *ProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products ORDER BY name ASC`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, classify(err, "list products")
	}
	defer rows.Close()

	return scanProducts(rows)
}

// DecrementStockIfAvailable is the conditional decrement at the heart of
// reservation: the availability check and the mutation are one UPDATE, so
// concurrent attempts on the same row serialize at the storage layer and
// stock can never go negative.
func (r *ProductRepository) DecrementStockIfAvailable(ctx context.Context, productID string, quantity int) (bool, error) {
	const stmt = `
UPDATE products
SET stock = stock - $2, updated_at = NOW()
WHERE id = $1 AND stock >= $2`

	tag, err := r.exec(ctx, stmt, productID, quantity)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, classify(err, "decrement stock")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ProductRepository) ProductStock(ctx context.Context, productID string) (int, error) {
	const query = `SELECT stock FROM products WHERE id = $1`

	var stock int
	if err := r.queryRow(ctx, query, productID).Scan(&stock); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return 0, domain.ErrProductNotFound
		}
		return 0, classify(err, "get stock")
	}
	return stock, nil
}

// IncrementStock is the unconstrained restock path.
func (r *ProductRepository) IncrementStock(ctx context.Context, productID string, quantity int) error {
	const stmt = `
UPDATE products
SET stock = stock + $2, updated_at = NOW()
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, productID, quantity)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return classify(err, "increment stock")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, classify(err, "scan product")
		}
		products = append(products, p)
	}
	if rows.Err() != nil {
		return nil, classify(rows.Err(), "iterate products")
	}
	return products, nil
}

func (r *ProductRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ProductRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *ProductRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
