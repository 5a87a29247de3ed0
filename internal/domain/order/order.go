package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/efitness/internal/domain/apperr"
	"github.com/xenking/efitness/internal/domain/product"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
	StatusShipped   Status = "Shipped"
)

var (
	ErrNotFound      = apperr.NotFound("order not found")
	ErrEmptyCart     = apperr.InvalidState("empty cart")
	ErrNoMethod      = apperr.Validation("payment method is required")
	ErrInvalidStatus = apperr.Validation("invalid order status")
	ErrNegativeTotal = apperr.Validation("total amount must not be negative")
)

// ParseStatus matches a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusPending, StatusCompleted, StatusCancelled, StatusShipped} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// Order is a placed product order.
type Order struct {
	ID          int64
	ClientID    int64
	ClientName  string
	OrderDate   time.Time
	TotalAmount decimal.Decimal
	Status      Status
	PaymentID   *int64
	Items       []Item
}

// Item is an order line. UnitPrice is the price at purchase time and is
// never updated afterwards.
type Item struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Category    string
	Brand       string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Subtotal returns quantity times unit price.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Payment settles one order.
type Payment struct {
	ID          int64
	OrderID     int64
	ClientID    int64
	Amount      decimal.Decimal
	Method      string
	PaymentDate time.Time
}

// Patch holds the admin-editable order fields.
type Patch struct {
	OrderDate   *time.Time
	TotalAmount *decimal.Decimal
	Status      *Status
}

// Empty reports whether no field is set.
func (p Patch) Empty() bool {
	return p.OrderDate == nil && p.TotalAmount == nil && p.Status == nil
}

// Tx is the set of writes checkout performs inside one transaction.
type Tx interface {
	// LockProduct reads a product and holds its row lock until the end of
	// the transaction.
	LockProduct(ctx context.Context, id int64) (*product.Product, error)
	InsertOrder(ctx context.Context, o *Order) (int64, error)
	InsertItem(ctx context.Context, orderID int64, item Item) error
	InsertPayment(ctx context.Context, p *Payment) (int64, error)
	AttachPayment(ctx context.Context, orderID, paymentID int64) error
	// DecrementStock subtracts qty only if at least qty units remain and
	// reports whether it did.
	DecrementStock(ctx context.Context, productID int64, qty int) (bool, error)
}

// Store persists orders.
type Store interface {
	// InTx runs fn in a transaction that commits only if fn returns nil.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	ListByClient(ctx context.Context, clientID int64) ([]Order, error)
	GetForClient(ctx context.Context, clientID, orderID int64) (*Order, error)
	PaymentForOrder(ctx context.Context, orderID int64) (*Payment, error)
	ListAll(ctx context.Context) ([]Order, error)
	Update(ctx context.Context, orderID int64, p Patch) error
	Delete(ctx context.Context, orderID int64) error
}
