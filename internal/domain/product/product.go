package product

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xenking/efitness/internal/domain/apperr"
)

// ErrNotFound is returned when a requested product does not exist or is not
// available for sale.
var ErrNotFound = apperr.NotFound("product not found or not available")

// Product is a store item with tracked inventory.
type Product struct {
	ID          int64
	Name        string
	Description string
	Category    string
	Brand       string
	Price       decimal.Decimal
	Stock       int
	IsActive    bool
}

// Filter narrows the admin catalog listing. Search matches name,
// description or brand.
type Filter struct {
	Search   string
	Category string
}

// Patch lists product fields to change. Nil fields are left untouched.
type Patch struct {
	Name        *string
	Description *string
	Category    *string
	Brand       *string
	Price       *decimal.Decimal
	Stock       *int
	IsActive    *bool
}

// Repository defines persistence operations for the catalog.
type Repository interface {
	ListAvailable(ctx context.Context) ([]Product, error)
	List(ctx context.Context, f Filter) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) (int64, error)
	Update(ctx context.Context, id int64, p Patch) error
	Delete(ctx context.Context, id int64) error
}
