package order

import (
	"context"
	"maps"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/efitness/internal/domain/apperr"
	"github.com/xenking/efitness/internal/domain/cart"
	"github.com/xenking/efitness/internal/domain/product"
	"github.com/xenking/efitness/internal/events"
)

// --- Fakes ---

type memDB struct {
	products map[int64]product.Product
	orders   map[int64]Order
	payments map[int64]Payment
	nextID   int64
}

func (db *memDB) clone() memDB {
	return memDB{
		products: maps.Clone(db.products),
		orders:   maps.Clone(db.orders),
		payments: maps.Clone(db.payments),
		nextID:   db.nextID,
	}
}

type fakeStore struct {
	mu          sync.Mutex
	db          memDB
	failPayment bool
	// lostRace makes the conditional decrement of these products match no row.
	lostRace map[int64]bool
}

func newFakeStore(products ...product.Product) *fakeStore {
	s := &fakeStore{db: memDB{
		products: make(map[int64]product.Product),
		orders:   make(map[int64]Order),
		payments: make(map[int64]Payment),
	}}
	for _, p := range products {
		s.db.products[p.ID] = p
	}
	return s
}

func (s *fakeStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.db.clone()
	if err := fn(ctx, &fakeTx{s: s}); err != nil {
		s.db = snapshot
		return err
	}
	return nil
}

func (s *fakeStore) ListByClient(_ context.Context, clientID int64) ([]Order, error) {
	var out []Order
	for _, o := range s.db.orders {
		if o.ClientID == clientID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeStore) GetForClient(_ context.Context, clientID, orderID int64) (*Order, error) {
	o, ok := s.db.orders[orderID]
	if !ok || o.ClientID != clientID {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (s *fakeStore) PaymentForOrder(_ context.Context, orderID int64) (*Payment, error) {
	for _, p := range s.db.payments {
		if p.OrderID == orderID {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) ListAll(context.Context) ([]Order, error) {
	return nil, nil
}

func (s *fakeStore) Update(_ context.Context, orderID int64, p Patch) error {
	o, ok := s.db.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.TotalAmount != nil {
		o.TotalAmount = *p.TotalAmount
	}
	s.db.orders[orderID] = o
	return nil
}

func (s *fakeStore) Delete(_ context.Context, orderID int64) error {
	if _, ok := s.db.orders[orderID]; !ok {
		return ErrNotFound
	}
	delete(s.db.orders, orderID)
	return nil
}

type fakeTx struct {
	s *fakeStore
}

func (t *fakeTx) id() int64 {
	t.s.db.nextID++
	return t.s.db.nextID
}

func (t *fakeTx) LockProduct(_ context.Context, id int64) (*product.Product, error) {
	p, ok := t.s.db.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (t *fakeTx) InsertOrder(_ context.Context, o *Order) (int64, error) {
	id := t.id()
	cp := *o
	cp.ID = id
	t.s.db.orders[id] = cp
	return id, nil
}

func (t *fakeTx) InsertItem(_ context.Context, orderID int64, item Item) error {
	o := t.s.db.orders[orderID]
	o.Items = append(o.Items, item)
	t.s.db.orders[orderID] = o
	return nil
}

func (t *fakeTx) InsertPayment(_ context.Context, p *Payment) (int64, error) {
	if t.s.failPayment {
		return 0, errors.New("connection reset by peer")
	}
	id := t.id()
	cp := *p
	cp.ID = id
	t.s.db.payments[id] = cp
	return id, nil
}

func (t *fakeTx) AttachPayment(_ context.Context, orderID, paymentID int64) error {
	o := t.s.db.orders[orderID]
	o.PaymentID = &paymentID
	t.s.db.orders[orderID] = o
	return nil
}

func (t *fakeTx) DecrementStock(_ context.Context, productID int64, qty int) (bool, error) {
	p := t.s.db.products[productID]
	if t.s.lostRace[productID] || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	t.s.db.products[productID] = p
	return true, nil
}

type fakeCarts struct {
	carts    map[string]cart.Cart
	clearErr error
}

func (f *fakeCarts) Get(_ context.Context, sid string) (cart.Cart, error) {
	return f.carts[sid].Clone(), nil
}

func (f *fakeCarts) Clear(_ context.Context, sid string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	delete(f.carts, sid)
	return nil
}

type fakeDirectory struct{}

func (fakeDirectory) Contact(context.Context, int64) (string, string, error) {
	return "Jane Doe", "jane@example.com", nil
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.events = append(p.events, ev)
	return p.err
}

// --- Helpers ---

func newProduct(id int64, name, price string, stock int) product.Product {
	return product.Product{
		ID:       id,
		Name:     name,
		Category: "Supplements",
		Brand:    "Acme",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
}

func line(p product.Product, qty int) cart.Line {
	return cart.Line{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price, Quantity: qty}
}

type fixture struct {
	svc   *Service
	store *fakeStore
	carts *fakeCarts
	pub   *recordingPublisher
}

func newFixture(t *testing.T, products ...product.Product) *fixture {
	t.Helper()
	f := &fixture{
		store: newFakeStore(products...),
		carts: &fakeCarts{carts: make(map[string]cart.Cart)},
		pub:   &recordingPublisher{},
	}
	svc, err := NewService(f.store, f.carts, fakeDirectory{}, f.pub, noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	f.svc = svc.WithClock(func() time.Time {
		return time.Date(2024, 5, 10, 19, 0, 0, 0, time.UTC)
	})
	return f
}

// --- Tests ---

func TestCheckout_EndToEnd(t *testing.T) {
	p7 := newProduct(7, "Whey Protein", "20.00", 5)
	f := newFixture(t, p7)
	f.carts.carts["sid"] = cart.Cart{Lines: []cart.Line{line(p7, 2)}}

	placed, err := f.svc.Checkout(context.Background(), "sid", 11, "card")
	require.NoError(t, err)

	assert.Equal(t, "40.00", placed.TotalAmount.StringFixed(2))
	assert.Equal(t, 3, f.store.db.products[7].Stock)
	assert.NotContains(t, f.carts.carts, "sid")

	o := f.store.db.orders[placed.OrderID]
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, int64(11), o.ClientID)
	require.NotNil(t, o.PaymentID)
	assert.Equal(t, placed.PaymentID, *o.PaymentID)

	pay := f.store.db.payments[placed.PaymentID]
	assert.Equal(t, "card", pay.Method)
	assert.True(t, pay.Amount.Equal(o.TotalAmount))

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, events.OrderPlaced, f.pub.events[0].Type)
}

func TestCheckout_TotalMatchesItems(t *testing.T) {
	a := newProduct(1, "Bands", "9.99", 10)
	b := newProduct(2, "Creatine", "24.50", 10)
	f := newFixture(t, a, b)
	f.carts.carts["sid"] = cart.Cart{Lines: []cart.Line{line(b, 1), line(a, 3)}}

	placed, err := f.svc.Checkout(context.Background(), "sid", 1, "cash")
	require.NoError(t, err)

	sum := decimal.Zero
	for _, it := range f.store.db.orders[placed.OrderID].Items {
		sum = sum.Add(it.Subtotal())
	}
	assert.True(t, sum.Equal(placed.TotalAmount), "sum %s total %s", sum, placed.TotalAmount)
	assert.Equal(t, "54.47", placed.TotalAmount.StringFixed(2))
	assert.Equal(t, 7, f.store.db.products[1].Stock)
	assert.Equal(t, 9, f.store.db.products[2].Stock)
}

func TestCheckout_UsesFreshPrice(t *testing.T) {
	p := newProduct(3, "Mat", "30.00", 4)
	f := newFixture(t, p)
	stale := line(p, 1)
	stale.UnitPrice = decimal.RequireFromString("25.00")
	f.carts.carts["sid"] = cart.Cart{Lines: []cart.Line{stale}}

	placed, err := f.svc.Checkout(context.Background(), "sid", 1, "card")
	require.NoError(t, err)
	assert.Equal(t, "30.00", placed.TotalAmount.StringFixed(2))
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), "sid", 1, "card")
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	assert.Empty(t, f.store.db.orders)
}

func TestCheckout_MissingMethod(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Checkout(context.Background(), "sid", 1, "  ")
	require.ErrorIs(t, err, ErrNoMethod)
}

func TestCheckout_InsufficientStockRollsBack(t *testing.T) {
	ok := newProduct(1, "Bands", "5.00", 10)
	short := newProduct(2, "Creatine", "20.00", 1)
	f := newFixture(t, ok, short)
	f.carts.carts["sid"] = cart.Cart{Lines: []cart.Line{line(ok, 2), line(short, 3)}}

	_, err := f.svc.Checkout(context.Background(), "sid", 1, "card")

	var pfErr *PurchaseFailedError
	require.ErrorAs(t, err, &pfErr)
	var stockErr *product.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(2), stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))
	assert.Contains(t, pfErr.Reason(), "Creatine")

	assert.Empty(t, f.store.db.orders)
	assert.Empty(t, f.store.db.payments)
	assert.Equal(t, 10, f.store.db.products[1].Stock)
	assert.Equal(t, 1, f.store.db.products[2].Stock)
	assert.Contains(t, f.carts.carts, "sid")
	assert.Empty(t, f.pub.events)
}

func TestCheckout_ConditionalDecrementRollsBack(t *testing.T) {
	first := newProduct(1, "Bands", "5.00", 10)
	last := newProduct(2, "Kettlebell", "40.00", 1)
	f := newFixture(t, first, last)
	// The row read says one unit is left, but another checkout took it
	// before the decrement.
	f.store.lostRace = map[int64]bool{2: true}
	f.carts.carts["sid"] = cart.Cart{Lines: []cart.Line{line(first, 2), line(last, 1)}}

	_, err := f.svc.Checkout(context.Background(), "sid", 1, "card")

	var pfErr *PurchaseFailedError
	require.ErrorAs(t, err, &pfErr)
	var stockErr *product.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(2), stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Requested)
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))

	assert.Empty(t, f.store.db.orders)
	assert.Empty(t, f.store.db.payments)
	assert.Equal(t, 10, f.store.db.products[1].Stock)
	assert.Equal(t, 1, f.store.db.products[2].Stock)
	assert.Contains(t, f.carts.carts, "sid")
	assert.Empty(t, f.pub.events)
}

func TestCheckout_InactiveProduct(t *testing.T) {
	p := newProduct(1, "Old Belt", "5.00", 10)
	p.IsActive = false
	f := newFixture(t, p)
	f.carts.carts["sid"] = cart.Cart{Lines: []cart.Line{line(p, 1)}}

	_, err := f.svc.Checkout(context.Background(), "sid", 1, "card")
	require.ErrorIs(t, err, product.ErrNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCheckout_InternalFailureHidesReason(t *testing.T) {
	p := newProduct(1, "Bands", "5.00", 10)
	f := newFixture(t, p)
	f.store.failPayment = true
	f.carts.carts["sid"] = cart.Cart{Lines: []cart.Line{line(p, 1)}}

	_, err := f.svc.Checkout(context.Background(), "sid", 1, "card")

	var pfErr *PurchaseFailedError
	require.ErrorAs(t, err, &pfErr)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, "internal error", pfErr.Reason())
	assert.Empty(t, f.store.db.orders)
	assert.Equal(t, 10, f.store.db.products[1].Stock)
}

func TestCheckout_PostCommitFailuresAreLogged(t *testing.T) {
	p := newProduct(1, "Bands", "5.00", 10)
	f := newFixture(t, p)
	f.carts.clearErr = errors.New("redis down")
	f.pub.err = errors.New("kafka down")
	f.carts.carts["sid"] = cart.Cart{Lines: []cart.Line{line(p, 1)}}

	placed, err := f.svc.Checkout(context.Background(), "sid", 1, "card")
	require.NoError(t, err)
	assert.Contains(t, f.store.db.orders, placed.OrderID)
}

func TestService_Update(t *testing.T) {
	f := newFixture(t)
	f.store.db.orders[1] = Order{ID: 1, ClientID: 1, Status: StatusPending}
	ctx := context.Background()

	err := f.svc.Update(ctx, 1, Patch{})
	require.ErrorIs(t, err, apperr.ErrNothingToUpdate)

	bad := Status("Lost")
	require.ErrorIs(t, f.svc.Update(ctx, 1, Patch{Status: &bad}), ErrInvalidStatus)

	neg := decimal.RequireFromString("-1")
	require.ErrorIs(t, f.svc.Update(ctx, 1, Patch{TotalAmount: &neg}), ErrNegativeTotal)

	shipped := Status("shipped")
	require.NoError(t, f.svc.Update(ctx, 1, Patch{Status: &shipped}))
	assert.Equal(t, StatusShipped, f.store.db.orders[1].Status)

	require.ErrorIs(t, f.svc.Update(ctx, 99, Patch{Status: &shipped}), ErrNotFound)
}

func TestService_Receipt(t *testing.T) {
	p := newProduct(7, "Whey Protein", "20.00", 5)
	f := newFixture(t, p)
	f.carts.carts["sid"] = cart.Cart{Lines: []cart.Line{line(p, 2)}}
	ctx := context.Background()

	placed, err := f.svc.Checkout(ctx, "sid", 11, "card")
	require.NoError(t, err)

	receipt, err := f.svc.Receipt(ctx, 11, placed.OrderID)
	require.NoError(t, err)
	assert.True(t, strings.Contains(receipt, "--- E-Fitness Order Receipt ---"))
	assert.Contains(t, receipt, "Client Name: Jane Doe")
	assert.Contains(t, receipt, "Order Date: 2024-05-11 01:00:00 (UTC+6)")
	assert.Contains(t, receipt, "Total Amount: $40.00")
	assert.Contains(t, receipt, "Payment Method: card")
	assert.Contains(t, receipt, "Unit Price: $20.00")
	assert.Contains(t, receipt, "Subtotal: $40.00")

	_, err = f.svc.Receipt(ctx, 12, placed.OrderID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, st)

	_, err = ParseStatus("done")
	require.ErrorIs(t, err, ErrInvalidStatus)
}
