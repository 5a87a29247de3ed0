package order

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/efitness/internal/domain/apperr"
	"github.com/xenking/efitness/internal/domain/cart"
	"github.com/xenking/efitness/internal/domain/product"
	"github.com/xenking/efitness/internal/events"
)

// Carts is the part of the cart service checkout depends on.
type Carts interface {
	Get(ctx context.Context, sessionID string) (cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

// Directory resolves client contact details for receipts.
type Directory interface {
	Contact(ctx context.Context, clientID int64) (name, email string, err error)
}

// Placed is the result of a successful checkout.
type Placed struct {
	OrderID     int64
	PaymentID   int64
	TotalAmount decimal.Decimal
	Items       []Item
}

// Service implements checkout, order history and order administration.
type Service struct {
	store     Store
	carts     Carts
	directory Directory
	publisher events.Publisher
	now       func() time.Time

	orders  metric.Int64Counter
	revenue metric.Float64Counter
}

// NewService creates an order Service.
func NewService(
	store Store,
	carts Carts,
	directory Directory,
	publisher events.Publisher,
	meter metric.Meter,
) (*Service, error) {
	orders, err := meter.Int64Counter("gym.checkout.orders",
		metric.WithDescription("Checkout attempts by result"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "orders counter")
	}
	revenue, err := meter.Float64Counter("gym.checkout.revenue",
		metric.WithDescription("Committed order totals"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "revenue counter")
	}
	return &Service{
		store:     store,
		carts:     carts,
		directory: directory,
		publisher: publisher,
		now:       time.Now,
		orders:    orders,
		revenue:   revenue,
	}, nil
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Checkout converts the session cart into an order, its items and a
// payment, and decrements stock, all in one transaction. Any failure inside
// the transaction is returned as *PurchaseFailedError and leaves no trace.
func (s *Service) Checkout(ctx context.Context, sessionID string, clientID int64, method string) (*Placed, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		return nil, ErrNoMethod
	}

	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if c.Empty() {
		return nil, ErrEmptyCart
	}

	// Lock rows in id order so concurrent checkouts cannot deadlock.
	lines := slices.Clone(c.Lines)
	slices.SortFunc(lines, func(a, b cart.Line) int {
		switch {
		case a.ProductID < b.ProductID:
			return -1
		case a.ProductID > b.ProductID:
			return 1
		}
		return 0
	})

	var placed Placed
	err = s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		placed = Placed{}
		stock := make(map[int64]int, len(lines))
		total := decimal.Zero
		for _, l := range lines {
			p, err := tx.LockProduct(ctx, l.ProductID)
			if err != nil {
				return err
			}
			if !p.IsActive {
				return product.ErrNotFound
			}
			if l.Quantity > p.Stock {
				return &product.InsufficientStockError{
					ProductID: p.ID,
					Name:      p.Name,
					Requested: l.Quantity,
					Available: p.Stock,
				}
			}
			stock[p.ID] = p.Stock
			item := Item{
				ProductID:   p.ID,
				ProductName: p.Name,
				Category:    p.Category,
				Brand:       p.Brand,
				Quantity:    l.Quantity,
				UnitPrice:   p.Price,
			}
			total = total.Add(item.Subtotal())
			placed.Items = append(placed.Items, item)
		}
		total = total.Round(2)

		at := s.now().UTC()
		orderID, err := tx.InsertOrder(ctx, &Order{
			ClientID:    clientID,
			OrderDate:   at,
			TotalAmount: total,
			Status:      StatusPending,
		})
		if err != nil {
			return errors.Wrap(err, "insert order")
		}
		for i := range placed.Items {
			placed.Items[i].OrderID = orderID
			if err := tx.InsertItem(ctx, orderID, placed.Items[i]); err != nil {
				return errors.Wrap(err, "insert order item")
			}
		}

		paymentID, err := tx.InsertPayment(ctx, &Payment{
			OrderID:     orderID,
			ClientID:    clientID,
			Amount:      total,
			Method:      method,
			PaymentDate: at,
		})
		if err != nil {
			return errors.Wrap(err, "insert payment")
		}
		if err := tx.AttachPayment(ctx, orderID, paymentID); err != nil {
			return errors.Wrap(err, "attach payment")
		}

		for _, it := range placed.Items {
			ok, err := tx.DecrementStock(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return errors.Wrap(err, "decrement stock")
			}
			if !ok {
				return &product.InsufficientStockError{
					ProductID: it.ProductID,
					Name:      it.ProductName,
					Requested: it.Quantity,
					Available: stock[it.ProductID],
				}
			}
		}

		placed.OrderID = orderID
		placed.PaymentID = paymentID
		placed.TotalAmount = total
		return nil
	})
	if err != nil {
		s.orders.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "failed")))
		return nil, &PurchaseFailedError{Err: err}
	}

	s.orders.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "ok")))
	s.revenue.Add(ctx, placed.TotalAmount.InexactFloat64())
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int64("gym.order.id", placed.OrderID),
		attribute.Int("gym.order.items", len(placed.Items)),
	)

	lg := zctx.From(ctx)
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		lg.Warn("Clear cart after checkout", zap.Int64("order_id", placed.OrderID), zap.Error(err))
	}
	if err := s.publisher.Publish(ctx, events.Event{
		Type:    events.OrderPlaced,
		Key:     strconv.FormatInt(clientID, 10),
		Time:    s.now(),
		Payload: placedEvent{ClientID: clientID, Placed: placed},
	}); err != nil {
		lg.Warn("Publish order event", zap.Int64("order_id", placed.OrderID), zap.Error(err))
	}

	return &placed, nil
}

// History returns the client's orders, newest first.
func (s *Service) History(ctx context.Context, clientID int64) ([]Order, error) {
	orders, err := s.store.ListByClient(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// Details returns one of the client's orders with its items.
func (s *Service) Details(ctx context.Context, clientID, orderID int64) (*Order, error) {
	return s.store.GetForClient(ctx, clientID, orderID)
}

// ListAll returns every order with client name and items.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	orders, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list all orders")
	}
	return orders, nil
}

// Update applies an admin patch.
func (s *Service) Update(ctx context.Context, orderID int64, p Patch) error {
	if p.Empty() {
		return apperr.ErrNothingToUpdate
	}
	if p.Status != nil {
		st, err := ParseStatus(string(*p.Status))
		if err != nil {
			return err
		}
		p.Status = &st
	}
	if p.TotalAmount != nil {
		if p.TotalAmount.IsNegative() {
			return ErrNegativeTotal
		}
		t := p.TotalAmount.Round(2)
		p.TotalAmount = &t
	}
	if p.OrderDate != nil {
		d := p.OrderDate.UTC()
		p.OrderDate = &d
	}
	return s.store.Update(ctx, orderID, p)
}

// Delete removes an order with its items and payment.
func (s *Service) Delete(ctx context.Context, orderID int64) error {
	return s.store.Delete(ctx, orderID)
}
