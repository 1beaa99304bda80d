package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/beemanhoney/shop/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, description, price, category, stock_quantity, image_url, is_featured, is_active
		FROM products
		WHERE is_active = TRUE
		  AND ($1 = '' OR name ILIKE '%' || $1 || '%' OR category ILIKE '%' || $1 || '%')
		ORDER BY id
		OFFSET $2 LIMIT $3`

	getProductByIDSQL = `SELECT id, name, description, price, category, stock_quantity, image_url, is_featured, is_active
		FROM products WHERE id = $1`

	getProductStockSQL = `SELECT stock_quantity FROM products WHERE id = $1`

	decrementStockSQL = `UPDATE products SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND stock_quantity >= $2`

	createProductSQL = `INSERT INTO products (id, name, description, price, category, stock_quantity, image_url, is_featured, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	updateProductSQL = `UPDATE products SET
			name           = COALESCE($2, name),
			description    = COALESCE($3, description),
			price          = COALESCE($4, price),
			category       = COALESCE($5, category),
			stock_quantity = COALESCE($6, stock_quantity),
			image_url      = COALESCE($7, image_url),
			is_featured    = COALESCE($8, is_featured),
			is_active      = COALESCE($9, is_active)
		WHERE id = $1
		RETURNING id, name, description, price, category, stock_quantity, image_url, is_featured, is_active`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	db DB
}

// NewProductRepository returns a ProductRepository over the given pool or
// transaction.
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns active products ordered by ID, optionally filtered by a
// case-insensitive name/category search.
func (r *ProductRepository) List(ctx context.Context, search string, offset, limit int) ([]product.Product, error) {
	rows, err := r.db.Query(ctx, listProductsSQL, search, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier, active or not.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.db.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// DecrementStock subtracts quantity from the product's stock. The guard in
// the UPDATE re-validates sufficiency at write time; a concurrent request
// that already took the last units makes this call fail with the conflict
// instead of driving stock negative.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	tag, err := r.db.Exec(ctx, decrementStockSQL, id, quantity)
	if err != nil {
		return fmt.Errorf("decrementing stock for product %q: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var available int
	if err := r.db.QueryRow(ctx, getProductStockSQL, id).Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.ErrNotFound
		}
		return fmt.Errorf("checking stock for product %q: %w", id, err)
	}
	return &product.InsufficientStockError{
		ProductID: id,
		Requested: quantity,
		Available: available,
	}
}

// Create inserts a new catalog product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.db.Exec(ctx, createProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Category,
		p.StockQuantity, p.ImageURL, p.IsFeatured, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update applies the non-nil fields of upd and returns the updated product.
func (r *ProductRepository) Update(ctx context.Context, id string, upd product.Update) (*product.Product, error) {
	rows, err := r.db.Query(ctx, updateProductSQL,
		id, upd.Name, upd.Description, upd.Price, upd.Category,
		upd.StockQuantity, upd.ImageURL, upd.IsFeatured, upd.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("updating product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("updating product %q: %w", id, err)
	}
	return &p, nil
}

// Delete removes a product from the catalog. Historical order items keep
// their snapshot; they reference products by plain identifier.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		price decimal.Decimal
		stock int32
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &price, &p.Category,
		&stock, &p.ImageURL, &p.IsFeatured, &p.IsActive,
	)
	p.Price = price
	p.StockQuantity = int(stock)
	return p, err
}
