package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mercadinho/market-api/internal/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetProductsByIDs resolves the products a placement references. Inside
// WithTx it reads through the placement's transaction.
func (r *OrderRepository) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::uuid[])`

	rows, err := r.query(ctx, query, ids)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, classify(err, "get products by ids")
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		// pgx defers server-side errors to row iteration; a malformed uuid in
		// the id list surfaces here, not on Query.
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, err
	}
	return products, nil
}

// CreateOrder persists the order and all of its lines. Callers run it inside
// WithTx so the write shares the reservation's transaction.
func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const orderStmt = `
INSERT INTO orders (id, buyer_id, status, total_cents, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.exec(ctx, orderStmt,
		order.ID,
		order.BuyerID,
		order.Status,
		order.TotalCents,
		order.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return classify(err, "insert order")
	}

	const lineStmt = `
INSERT INTO order_lines (order_id, product_id, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4)`

	for _, line := range order.Lines {
		if _, err := r.exec(ctx, lineStmt, order.ID, line.ProductID, line.Quantity, line.UnitPriceCents); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateProduct
			}
			return classify(err, "insert order line")
		}
	}
	return nil
}

// ListByBuyer returns a buyer's committed orders, newest first, with lines.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	const query = `
SELECT id, buyer_id, status, total_cents, created_at
FROM orders
WHERE buyer_id = $1
ORDER BY created_at DESC`

	rows, err := r.query(ctx, query, buyerID)
	if err != nil {
		return nil, classify(err, "list orders by buyer")
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListPage returns one page of all orders, newest first, plus the total count.
func (r *OrderRepository) ListPage(ctx context.Context, offset, limit int) ([]domain.Order, int, error) {
	var total int
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, classify(err, "count orders")
	}

	const query = `
SELECT id, buyer_id, status, total_cents, created_at
FROM orders
ORDER BY created_at DESC
OFFSET $1 LIMIT $2`

	rows, err := r.query(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, classify(err, "list orders page")
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderRepository) attachLines(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids = append(ids, o.ID)
		index[o.ID] = i
	}

	const query = `
SELECT order_id, product_id, quantity, unit_price_cents
FROM order_lines
WHERE order_id = ANY($1::uuid[])
ORDER BY order_id, product_id`

	rows, err := r.query(ctx, query, ids)
	if err != nil {
		return classify(err, "list order lines")
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var line domain.OrderLine
		if err := rows.Scan(&orderID, &line.ProductID, &line.Quantity, &line.UnitPriceCents); err != nil {
			return classify(err, "scan order line")
		}
		i := index[orderID]
		orders[i].Lines = append(orders[i].Lines, line)
	}
	if rows.Err() != nil {
		return classify(rows.Err(), "iterate order lines")
	}
	return nil
}

func scanOrders(rows pgx.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.Status, &o.TotalCents, &o.CreatedAt); err != nil {
			return nil, classify(err, "scan order")
		}
		orders = append(orders, o)
	}
	if rows.Err() != nil {
		return nil, classify(rows.Err(), "iterate orders")
	}
	return orders, nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
