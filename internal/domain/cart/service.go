package cart

import (
	"context"
	"math"

	"github.com/go-faster/errors"

	"github.com/xenking/efitness/internal/domain/product"
)

// Catalog resolves products that can currently be sold.
type Catalog interface {
	GetActive(ctx context.Context, id int64) (*product.Product, error)
}

// Service implements cart operations for a session.
type Service struct {
	store   Store
	catalog Catalog
}

// NewService creates a cart Service.
func NewService(store Store, catalog Catalog) *Service {
	return &Service{store: store, catalog: catalog}
}

// Add puts qty units of a product into the cart, merging with an existing
// line. The cart is left unchanged when the resulting quantity would exceed
// current stock.
func (s *Service) Add(ctx context.Context, sessionID string, productID int64, qty int) (Cart, error) {
	if productID <= 0 || qty <= 0 {
		return Cart{}, ErrInvalidQuantity
	}

	p, err := s.catalog.GetActive(ctx, productID)
	if err != nil {
		return Cart{}, err
	}

	return s.store.Update(ctx, sessionID, func(c *Cart) error {
		i := c.index(productID)
		have := 0
		if i >= 0 {
			have = c.Lines[i].Quantity
		}
		if qty > p.Stock-have {
			return &product.InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: saturatingAdd(have, qty),
				Available: p.Stock,
			}
		}
		if i >= 0 {
			c.Lines[i].Quantity = have + qty
			return nil
		}
		c.Lines = append(c.Lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  qty,
		})
		return nil
	})
}

func saturatingAdd(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// Remove drops a product line from the cart.
func (s *Service) Remove(ctx context.Context, sessionID string, productID int64) (Cart, error) {
	if productID <= 0 {
		return Cart{}, ErrInvalidQuantity
	}
	return s.store.Update(ctx, sessionID, func(c *Cart) error {
		if c.Empty() {
			return ErrEmpty
		}
		i := c.index(productID)
		if i < 0 {
			return ErrLineNotFound
		}
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return nil
	})
}

// Get returns the current cart.
func (s *Service) Get(ctx context.Context, sessionID string) (Cart, error) {
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Cart{}, errors.Wrap(err, "get cart")
	}
	return c, nil
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}
