package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/maestranza/inventory-backend/pkg/database"
	"github.com/maestranza/inventory-backend/pkg/errors"
)

// Product represents a catalog product with its current stock level.
// Quantity is the authoritative on-hand total, maintained by movements.
type Product struct {
	ID            string    `db:"id" json:"id"`
	SKU           string    `db:"sku" json:"sku"`
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description"`
	CategoryID    *string   `db:"category_id" json:"category_id,omitempty"`
	SupplierID    *string   `db:"supplier_id" json:"supplier_id,omitempty"`
	Location      string    `db:"location" json:"location"`
	Unit          string    `db:"unit" json:"unit"`
	UnitPrice     float64   `db:"unit_price" json:"unit_price"`
	Brand         string    `db:"brand" json:"brand"`
	Quantity      int       `db:"quantity" json:"quantity"`
	MinStock      int       `db:"min_stock" json:"min_stock"`
	MaxStock      *int      `db:"max_stock" json:"max_stock,omitempty"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	ExpiryControl bool      `db:"expiry_control" json:"expiry_control"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ProductFilter narrows List results
type ProductFilter struct {
	CategoryID *string
	SupplierID *string
	IsActive   *bool
	Search     string
	Limit      int
	Offset     int
}

// ProductRepository handles product persistence
type ProductRepository struct {
	db *database.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Unit == "" {
		p.Unit = "unit"
	}
	p.IsActive = true

	query := `
		INSERT INTO products (id, sku, name, description, category_id, supplier_id,
			location, unit, unit_price, brand, quantity, min_stock, max_stock, expiry_control)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.SKU, p.Name, p.Description, p.CategoryID, p.SupplierID,
		p.Location, p.Unit, p.UnitPrice, p.Brand, p.Quantity, p.MinStock, p.MaxStock, p.ExpiryControl,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// GetByID gets a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("product")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetBySKU gets a product by its SKU
func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p, `SELECT * FROM products WHERE sku = $1`, sku)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("product")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns products matching the filter plus the total count for pagination
func (r *ProductRepository) List(ctx context.Context, filter ProductFilter) ([]*Product, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argN := 1

	if filter.CategoryID != nil {
		where += fmt.Sprintf(" AND category_id = $%d", argN)
		args = append(args, *filter.CategoryID)
		argN++
	}
	if filter.SupplierID != nil {
		where += fmt.Sprintf(" AND supplier_id = $%d", argN)
		args = append(args, *filter.SupplierID)
		argN++
	}
	if filter.IsActive != nil {
		where += fmt.Sprintf(" AND is_active = $%d", argN)
		args = append(args, *filter.IsActive)
		argN++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR sku ILIKE $%d)", argN, argN)
		args = append(args, "%"+filter.Search+"%")
		argN++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM products "+where, args...); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf("SELECT * FROM products %s ORDER BY name LIMIT $%d OFFSET $%d", where, argN, argN+1)
	args = append(args, limit, filter.Offset)

	products := []*Product{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Update updates mutable product fields. Quantity is not touched here,
// it only changes through movements.
func (r *ProductRepository) Update(ctx context.Context, p *Product) error {
	query := `
		UPDATE products
		SET sku = $2, name = $3, description = $4, category_id = $5, supplier_id = $6,
		    location = $7, unit = $8, unit_price = $9, brand = $10, min_stock = $11,
		    max_stock = $12, is_active = $13, expiry_control = $14, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		p.ID, p.SKU, p.Name, p.Description, p.CategoryID, p.SupplierID,
		p.Location, p.Unit, p.UnitPrice, p.Brand, p.MinStock,
		p.MaxStock, p.IsActive, p.ExpiryControl,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("product")
	}
	return nil
}

// Delete deactivates a product. Rows are kept so the movement history
// stays intact; deactivated products drop out of listings and scans.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("product")
	}
	return nil
}

// ListBelowMinStock returns active products whose quantity is at or below
// their minimum
func (r *ProductRepository) ListBelowMinStock(ctx context.Context) ([]*Product, error) {
	products := []*Product{}
	err := r.db.SelectContext(ctx, &products,
		`SELECT * FROM products WHERE is_active AND quantity <= min_stock ORDER BY quantity`)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListAll returns every active product, used by the rules engine scans
func (r *ProductRepository) ListAll(ctx context.Context) ([]*Product, error) {
	products := []*Product{}
	if err := r.db.SelectContext(ctx, &products, `SELECT * FROM products WHERE is_active ORDER BY name`); err != nil {
		return nil, err
	}
	return products, nil
}

// GetForUpdate locks a product row inside a transaction so concurrent
// movements serialize on the same stock level.
func (r *ProductRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*Product, error) {
	var p Product
	err := tx.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1 FOR UPDATE`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("product")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetQuantity updates the stock level inside a movement transaction
func (r *ProductRepository) SetQuantity(ctx context.Context, tx *sqlx.Tx, id string, quantity int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE products SET quantity = $2, updated_at = NOW() WHERE id = $1`, id, quantity)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("product")
	}
	return nil
}
