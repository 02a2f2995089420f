package orders

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/joao-fontenele/storefront/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// InTx runs fn in a single database transaction, committing only when fn
// returns nil.
func (r *OrderRepository) InTx(ctx context.Context, fn func(CheckoutTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&checkoutTx{tx: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

type checkoutTx struct {
	tx *sql.Tx
}

// CartLines locks the user's cart rows so concurrent checkouts of the same
// cart serialize.
func (t *checkoutTx) CartLines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT cl.id, cl.user_id, cl.product_id, p.name, p.image_url, p.price, cl.quantity
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
		WHERE cl.user_id = $1
		ORDER BY cl.id
		FOR UPDATE OF cl
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.ProductName, &l.ImageURL, &l.Price, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

func (t *checkoutTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, order_date, total_amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, order.UserID, order.OrderDate, order.TotalAmount, order.Status).Scan(&order.ID)
	if err != nil {
		return err
	}

	for _, line := range order.Items {
		_, err = t.tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, product_name, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`, order.ID, line.ProductID, line.ProductName, line.Quantity, line.Price)
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *checkoutTx) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`, productID, quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrInsufficientStock
	}

	return nil
}

func (t *checkoutTx) ClearCart(ctx context.Context, userID int64) error {
	_, err := t.tx.ExecContext(ctx, `
		DELETE FROM cart_lines
		WHERE user_id = $1
	`, userID)
	return err
}

// ListByUser returns the user's orders newest first, loading all lines in a
// single batched query.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, order_date, total_amount, status
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[int64]*domain.Order)
	var orderIDs []int64

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.OrderDate, &order.TotalAmount, &order.Status); err != nil {
			return nil, err
		}
		order.Items = []domain.OrderLine{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	lineRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, product_name, quantity, price
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = lineRows.Close() }()

	for lineRows.Next() {
		var orderID int64
		var productID sql.NullInt64
		var line domain.OrderLine
		if err := lineRows.Scan(&orderID, &productID, &line.ProductName, &line.Quantity, &line.Price); err != nil {
			return nil, err
		}
		if productID.Valid {
			id := productID.Int64
			line.ProductID = &id
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, line)
	}

	if err := lineRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}
