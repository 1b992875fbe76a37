package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"resto-supply/models"
	"resto-supply/services"
)

// OrderRepository is the pgx-backed order store. Mutations run through InTx;
// each call gets its own transaction scope.
type OrderRepository struct {
	pool *pgxpool.Pool
}

var _ services.OrderStore = (*OrderRepository)(nil)

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) InTx(ctx context.Context, fn func(tx services.OrderTx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&orderTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *OrderRepository) UnsentOrderIDs(ctx context.Context) ([]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM orders WHERE NOT sent ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsent orders: %w", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *OrderRepository) SentOrderRows(ctx context.Context, restaurantIDs []int) ([]models.SentOrderRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.name, u.email, o.created_at, p.name, l.quantity, l.unit_price, COALESCE(o.note, '')
		FROM orders o
		JOIN restaurants r ON r.id = o.restaurant_id
		JOIN users u ON u.id = o.user_id
		JOIN order_lines l ON l.order_id = o.id
		JOIN products p ON p.id = l.product_id
		WHERE o.restaurant_id = ANY($1) AND o.sent
		ORDER BY o.created_at DESC, l.id`,
		restaurantIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query sent orders: %w", err)
	}
	defer rows.Close()

	report := []models.SentOrderRow{}
	for rows.Next() {
		var row models.SentOrderRow
		if err := rows.Scan(&row.Restaurant, &row.OrderManager, &row.OrderDate,
			&row.Product, &row.Quantity, &row.UnitPrice, &row.Note); err != nil {
			return nil, err
		}
		row.LineTotal = row.Quantity * row.UnitPrice
		report = append(report, row)
	}
	return report, rows.Err()
}

// orderTx wraps one pgx transaction as the scope handed to a single logical
// mutation.
type orderTx struct {
	tx pgx.Tx
}

var _ services.OrderTx = (*orderTx)(nil)

func (t *orderTx) LockAggregation(ctx context.Context, ownerID, restaurantID int) error {
	// Transaction-scoped advisory lock keyed on the pair. Concurrent
	// aggregations for the same owner and restaurant queue up behind it.
	_, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, int32(ownerID), int32(restaurantID))
	if err != nil {
		return fmt.Errorf("failed to lock aggregation for owner %d restaurant %d: %w", ownerID, restaurantID, err)
	}
	return nil
}

func (t *orderTx) UnsentOrders(ctx context.Context, ownerID, restaurantID int) ([]models.Order, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, user_id, restaurant_id, created_at, total, note, sent
		FROM orders
		WHERE user_id = $1 AND restaurant_id = $2 AND NOT sent
		ORDER BY created_at, id
		FOR UPDATE`,
		ownerID, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unsent orders: %w", err)
	}

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := t.loadLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (t *orderTx) LatestUnsentByOwner(ctx context.Context, ownerID int) (*models.Order, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, user_id, restaurant_id, created_at, total, note, sent
		FROM orders
		WHERE user_id = $1 AND NOT sent
		ORDER BY created_at DESC, id DESC
		LIMIT 1
		FOR UPDATE`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query current order: %w", err)
	}

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, &models.NotFoundError{Resource: "order"}
	}
	if err := t.loadLines(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (t *orderTx) UnsentOrderForDispatch(ctx context.Context, orderID int) (*models.Order, error) {
	var o models.Order
	err := t.tx.QueryRow(ctx, `
		SELECT o.id, o.user_id, o.restaurant_id, o.created_at, o.total, o.note, o.sent, r.name
		FROM orders o
		JOIN restaurants r ON r.id = o.restaurant_id
		WHERE o.id = $1 AND NOT o.sent
		FOR UPDATE OF o`,
		orderID).Scan(&o.ID, &o.UserID, &o.RestaurantID, &o.CreatedAt, &o.Total, &o.Note, &o.Sent, &o.RestaurantName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "unsent order", ID: orderID}
		}
		return nil, fmt.Errorf("failed to load order %d for dispatch: %w", orderID, err)
	}

	rows, err := t.tx.Query(ctx, `
		SELECT l.id, l.order_id, l.product_id, l.quantity, l.unit_price, p.name, s.id, s.email
		FROM order_lines l
		JOIN products p ON p.id = l.product_id
		JOIN suppliers s ON s.id = p.supplier_id
		WHERE l.order_id = $1
		ORDER BY l.id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for order %d: %w", orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice,
			&l.ProductName, &l.SupplierID, &l.SupplierEmail); err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, l)
	}
	return &o, rows.Err()
}

func (t *orderTx) InsertOrder(ctx context.Context, o *models.Order) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, restaurant_id, created_at, total, note, sent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		o.UserID, o.RestaurantID, o.CreatedAt, o.Total, o.Note, o.Sent).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (t *orderTx) InsertLine(ctx context.Context, l *models.OrderLine) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO order_lines (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		l.OrderID, l.ProductID, l.Quantity, l.UnitPrice).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("failed to insert order line: %w", err)
	}
	return nil
}

func (t *orderTx) UpdateLineQuantity(ctx context.Context, lineID int, quantity float64) error {
	_, err := t.tx.Exec(ctx, `UPDATE order_lines SET quantity = $1 WHERE id = $2`, quantity, lineID)
	if err != nil {
		return fmt.Errorf("failed to update line %d: %w", lineID, err)
	}
	return nil
}

func (t *orderTx) DeleteLine(ctx context.Context, lineID int) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM order_lines WHERE id = $1`, lineID)
	if err != nil {
		return fmt.Errorf("failed to delete line %d: %w", lineID, err)
	}
	return nil
}

func (t *orderTx) SetOrderTotal(ctx context.Context, orderID int, total float64) error {
	_, err := t.tx.Exec(ctx, `UPDATE orders SET total = $1 WHERE id = $2`, total, orderID)
	if err != nil {
		return fmt.Errorf("failed to update total for order %d: %w", orderID, err)
	}
	return nil
}

func (t *orderTx) DeleteOrder(ctx context.Context, orderID int) error {
	// Lines are not cascaded: their order_id goes NULL and the next
	// aggregation's cleanup pass removes them.
	_, err := t.tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order %d: %w", orderID, err)
	}
	return nil
}

func (t *orderTx) DeleteOrphanLines(ctx context.Context) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM order_lines WHERE order_id IS NULL`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphaned lines: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t *orderTx) MarkSent(ctx context.Context, orderID int) error {
	_, err := t.tx.Exec(ctx, `UPDATE orders SET sent = TRUE WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to mark order %d sent: %w", orderID, err)
	}
	return nil
}

func (t *orderTx) loadLines(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int]*models.Order, len(orders))
	ids := make([]int, 0, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
		ids = append(ids, orders[i].ID)
	}

	rows, err := t.tx.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY id`,
		ids)
	if err != nil {
		return fmt.Errorf("failed to load order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice); err != nil {
			return err
		}
		if o, ok := byID[l.OrderID]; ok {
			o.Lines = append(o.Lines, l)
		}
	}
	return rows.Err()
}

func scanOrders(rows pgx.Rows) ([]models.Order, error) {
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.RestaurantID, &o.CreatedAt, &o.Total, &o.Note, &o.Sent); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
