package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/efitness/internal/domain/order"
	"github.com/xenking/efitness/internal/domain/product"
)

const (
	lockProductSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	insertOrderSQL = `INSERT INTO orders (client_id, order_date, total_amount, status)
		VALUES ($1, $2, $3, $4) RETURNING id`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)`

	insertProductPaymentSQL = `INSERT INTO product_payments (order_id, client_id, amount, payment_method, payment_date)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	attachPaymentSQL = `UPDATE orders SET payment_id = $1 WHERE id = $2`

	decrementStockSQL = `UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`

	orderColumns = `o.id, o.client_id, a.full_name, o.order_date, o.total_amount, o.status, o.payment_id`

	listOrdersByClientSQL = `SELECT ` + orderColumns + `
		FROM orders o JOIN accounts a ON a.id = o.client_id
		WHERE o.client_id = $1 ORDER BY o.order_date DESC, o.id DESC`

	getOrderForClientSQL = `SELECT ` + orderColumns + `
		FROM orders o JOIN accounts a ON a.id = o.client_id
		WHERE o.client_id = $1 AND o.id = $2`

	listAllOrdersSQL = `SELECT ` + orderColumns + `
		FROM orders o JOIN accounts a ON a.id = o.client_id
		ORDER BY o.order_date DESC, o.id DESC`

	orderItemColumns = `oi.id, oi.order_id, oi.product_id, p.name, p.category, p.brand, oi.quantity, oi.unit_price`

	listOrderItemsSQL = `SELECT ` + orderItemColumns + `
		FROM order_items oi JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1) ORDER BY oi.order_id, oi.id`

	getPaymentForOrderSQL = `SELECT id, order_id, client_id, amount, payment_method, payment_date
		FROM product_payments WHERE order_id = $1`

	deleteOrderPaymentSQL = `DELETE FROM product_payments WHERE order_id = $1`
	deleteOrderItemsSQL   = `DELETE FROM order_items WHERE order_id = $1`
	deleteOrderSQL        = `DELETE FROM orders WHERE id = $1`
)

var _ order.Store = (*OrderRepository)(nil)

// OrderRepository implements order.Store backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// InTx runs fn in a transaction. Row locks taken through the Tx are held
// until commit or rollback.
func (r *OrderRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx order.Tx) error) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, orderTx{tx: tx})
	})
}

type orderTx struct {
	tx pgx.Tx
}

var _ order.Tx = orderTx{}

func (t orderTx) LockProduct(ctx context.Context, id int64) (*product.Product, error) {
	return getProduct(ctx, t.tx, lockProductSQL, id)
}

func (t orderTx) InsertOrder(ctx context.Context, o *order.Order) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, insertOrderSQL, o.ClientID, o.OrderDate, o.TotalAmount, o.Status).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}
	return id, nil
}

func (t orderTx) InsertItem(ctx context.Context, orderID int64, item order.Item) error {
	_, err := t.tx.Exec(ctx, insertOrderItemSQL, orderID, item.ProductID, item.Quantity, item.UnitPrice)
	if err != nil {
		return fmt.Errorf("inserting item of order %d: %w", orderID, err)
	}
	return nil
}

func (t orderTx) InsertPayment(ctx context.Context, p *order.Payment) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, insertProductPaymentSQL, p.OrderID, p.ClientID, p.Amount, p.Method, p.PaymentDate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting payment of order %d: %w", p.OrderID, err)
	}
	return id, nil
}

func (t orderTx) AttachPayment(ctx context.Context, orderID, paymentID int64) error {
	_, err := t.tx.Exec(ctx, attachPaymentSQL, paymentID, orderID)
	if err != nil {
		return fmt.Errorf("attaching payment %d to order %d: %w", paymentID, orderID, err)
	}
	return nil
}

func (t orderTx) DecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	tag, err := t.tx.Exec(ctx, decrementStockSQL, qty, productID)
	if err != nil {
		return false, fmt.Errorf("decrementing stock of product %d: %w", productID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByClient returns the client's orders, newest first, with their items.
func (r *OrderRepository) ListByClient(ctx context.Context, clientID int64) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByClientSQL, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of client %d: %w", clientID, err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders of client %d: %w", clientID, err)
	}
	return orders, r.attachItems(ctx, orders)
}

// GetForClient returns an order with its items if the client owns it.
func (r *OrderRepository) GetForClient(ctx context.Context, clientID, orderID int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderForClientSQL, clientID, orderID)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", orderID, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", orderID, err)
	}

	list := []order.Order{o}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// PaymentForOrder returns the payment settling the order.
func (r *OrderRepository) PaymentForOrder(ctx context.Context, orderID int64) (*order.Payment, error) {
	rows, err := r.pool.Query(ctx, getPaymentForOrderSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("getting payment of order %d: %w", orderID, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (order.Payment, error) {
		var p order.Payment
		err := row.Scan(&p.ID, &p.OrderID, &p.ClientID, &p.Amount, &p.Method, &p.PaymentDate)
		return p, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting payment of order %d: %w", orderID, err)
	}
	return &p, nil
}

// ListAll returns every order with the client name and items.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listAllOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, r.attachItems(ctx, orders)
}

// Update applies an admin patch.
func (r *OrderRepository) Update(ctx context.Context, orderID int64, p order.Patch) error {
	var s setList
	setIf(&s, "order_date", p.OrderDate)
	setIf(&s, "total_amount", p.TotalAmount)
	setIf(&s, "status", p.Status)
	return s.exec(ctx, r.pool, "orders", order.ErrNotFound, where("id", orderID))
}

// Delete removes the payment, the items and the order in one transaction.
func (r *OrderRepository) Delete(ctx context.Context, orderID int64) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteOrderPaymentSQL, orderID); err != nil {
			return fmt.Errorf("deleting payment of order %d: %w", orderID, err)
		}
		if _, err := tx.Exec(ctx, deleteOrderItemsSQL, orderID); err != nil {
			return fmt.Errorf("deleting items of order %d: %w", orderID, err)
		}
		tag, err := tx.Exec(ctx, deleteOrderSQL, orderID)
		if err != nil {
			return fmt.Errorf("deleting order %d: %w", orderID, err)
		}
		if tag.RowsAffected() == 0 {
			return order.ErrNotFound
		}
		return nil
	})
}

func (r *OrderRepository) attachItems(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	byID := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = i
	}

	rows, err := r.pool.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("listing order items: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return fmt.Errorf("listing order items: %w", err)
	}
	for _, it := range items {
		i := byID[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.ClientID, &o.ClientName, &o.OrderDate, &o.TotalAmount, &o.Status, &o.PaymentID)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Category, &it.Brand, &it.Quantity, &it.UnitPrice)
	return it, err
}
