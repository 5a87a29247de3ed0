package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/efitness/internal/domain/apperr"
	"github.com/xenking/efitness/internal/domain/product"
)

const (
	productColumns = `id, name, description, category, brand, price, stock, is_active`

	listAvailableProductsSQL = `SELECT ` + productColumns + `
		FROM products WHERE is_active AND stock > 0 ORDER BY name`

	listProductsSQL = `SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%' OR brand ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR category = $2)
		ORDER BY id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	insertProductSQL = `INSERT INTO products (name, description, category, brand, price, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

var errProductInUse = apperr.Conflict("product is referenced by orders and cannot be deleted")

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// ListAvailable returns active products that are in stock.
func (r *ProductRepository) ListAvailable(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listAvailableProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing available products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// List returns the whole catalog narrowed by the filter, ordered by id.
func (r *ProductRepository) List(ctx context.Context, f product.Filter) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL, f.Search, f.Category)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier, active or not.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return getProduct(ctx, r.pool, getProductByIDSQL, id)
}

func getProduct(ctx context.Context, q querier, sql string, id int64) (*product.Product, error) {
	rows, err := q.Query(ctx, sql, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// Create inserts a product and returns its id.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertProductSQL,
		p.Name, p.Description, p.Category, p.Brand, p.Price, p.Stock, p.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting product: %w", err)
	}
	return id, nil
}

// Update applies a product patch.
func (r *ProductRepository) Update(ctx context.Context, id int64, p product.Patch) error {
	var s setList
	setIf(&s, "name", p.Name)
	setIf(&s, "description", p.Description)
	setIf(&s, "category", p.Category)
	setIf(&s, "brand", p.Brand)
	setIf(&s, "price", p.Price)
	setIf(&s, "stock", p.Stock)
	setIf(&s, "is_active", p.IsActive)
	return s.exec(ctx, r.pool, "products", product.ErrNotFound, where("id", id))
}

// Delete removes a product that no order references.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errProductInUse
		}
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Brand, &p.Price, &p.Stock, &p.IsActive)
	return p, err
}
