package product

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/efitness/internal/domain/apperr"
)

// Service implements catalog reads and admin inventory management.
type Service struct {
	repo Repository
}

// NewService creates a product Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListAvailable returns active products that are in stock.
func (s *Service) ListAvailable(ctx context.Context) ([]Product, error) {
	list, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list available products")
	}
	return list, nil
}

// List returns the admin view of the catalog.
func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	f.Search = strings.TrimSpace(f.Search)
	f.Category = strings.TrimSpace(f.Category)
	list, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return list, nil
}

// GetActive returns a product that can be sold right now.
func (s *Service) GetActive(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrNotFound
	}
	return p, nil
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, p Product) (int64, error) {
	if strings.TrimSpace(p.Name) == "" {
		return 0, apperr.Validation("product name is required")
	}
	if p.Price.IsNegative() {
		return 0, apperr.Validation("price must not be negative")
	}
	if p.Stock < 0 {
		return 0, apperr.Validation("stock must not be negative")
	}
	p.Price = p.Price.Round(2)
	id, err := s.repo.Create(ctx, &p)
	if err != nil {
		return 0, errors.Wrap(err, "create product")
	}
	return id, nil
}

// Update applies a patch to a product.
func (s *Service) Update(ctx context.Context, id int64, p Patch) error {
	if p == (Patch{}) {
		return apperr.ErrNothingToUpdate
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperr.Validation("product name cannot be empty")
	}
	if p.Price != nil {
		if p.Price.IsNegative() {
			return apperr.Validation("price must not be negative")
		}
		rounded := p.Price.Round(2)
		p.Price = &rounded
	}
	if p.Stock != nil && *p.Stock < 0 {
		return apperr.Validation("stock must not be negative")
	}
	if err := s.repo.Update(ctx, id, p); err != nil {
		return errors.Wrapf(err, "update product %d", id)
	}
	return nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "delete product %d", id)
	}
	return nil
}
