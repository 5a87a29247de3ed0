package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xenking/efitness/internal/domain/apperr"
)

var (
	ErrInvalidQuantity = apperr.Validation("invalid product id or quantity")
	ErrEmpty           = apperr.NotFound("cart is empty")
	ErrLineNotFound    = apperr.NotFound("product not found in cart")
)

// Line is one product in a cart. UnitPrice is the price seen when the
// product was added and is informational only.
type Line struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Cart is the ordered set of lines owned by one session. A product appears
// at most once.
type Cart struct {
	Lines []Line
}

// Clone returns a deep copy.
func (c Cart) Clone() Cart {
	if c.Lines == nil {
		return Cart{}
	}
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Quantity returns the quantity of a product in the cart.
func (c Cart) Quantity(productID int64) int {
	if i := c.index(productID); i >= 0 {
		return c.Lines[i].Quantity
	}
	return 0
}

func (c Cart) index(productID int64) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Store keeps carts keyed by session id. Update runs fn against a copy of
// the cart under a per-session single-writer discipline and persists the
// copy only if fn returns nil.
type Store interface {
	Get(ctx context.Context, sessionID string) (Cart, error)
	Update(ctx context.Context, sessionID string, fn func(c *Cart) error) (Cart, error)
	Clear(ctx context.Context, sessionID string) error
}
