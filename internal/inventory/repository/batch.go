package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/maestranza/inventory-backend/pkg/database"
	"github.com/maestranza/inventory-backend/pkg/errors"
)

// Batch is a received lot of a product with an optional expiry date
type Batch struct {
	ID         string     `db:"id" json:"id"`
	ProductID  string     `db:"product_id" json:"product_id"`
	LotNumber  string     `db:"lot_number" json:"lot_number"`
	Quantity   int        `db:"quantity" json:"quantity"`
	ExpiryDate *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	IsExpired  bool       `db:"is_expired" json:"is_expired"`
	ReceivedAt time.Time  `db:"received_at" json:"received_at"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// ExpiringBatch is a batch joined with its product for alerting and reports
type ExpiringBatch struct {
	Batch
	ProductName string `db:"product_name" json:"product_name"`
	ProductSKU  string `db:"product_sku" json:"product_sku"`
}

// BatchRepository handles batch persistence
type BatchRepository struct {
	db *database.DB
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *database.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create creates a new batch
func (r *BatchRepository) Create(ctx context.Context, b *Batch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.ReceivedAt.IsZero() {
		b.ReceivedAt = time.Now()
	}

	query := `
		INSERT INTO batches (id, product_id, lot_number, quantity, expiry_date, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		b.ID, b.ProductID, b.LotNumber, b.Quantity, b.ExpiryDate, b.ReceivedAt,
	).Scan(&b.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// GetByID gets a batch by ID
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*Batch, error) {
	var b Batch
	err := r.db.GetContext(ctx, &b, `SELECT * FROM batches WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("batch")
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByProduct returns all batches of a product, soonest expiry first
func (r *BatchRepository) ListByProduct(ctx context.Context, productID string) ([]*Batch, error) {
	batches := []*Batch{}
	err := r.db.SelectContext(ctx, &batches,
		`SELECT * FROM batches WHERE product_id = $1 ORDER BY expiry_date NULLS LAST, received_at`,
		productID)
	if err != nil {
		return nil, err
	}
	return batches, nil
}

// ListExpiringWithin returns batches with remaining stock expiring in the next
// N days. Batches already past their expiry date are not included.
func (r *BatchRepository) ListExpiringWithin(ctx context.Context, days int) ([]*ExpiringBatch, error) {
	batches := []*ExpiringBatch{}
	query := `
		SELECT b.*, p.name AS product_name, p.sku AS product_sku
		FROM batches b
		JOIN products p ON p.id = b.product_id
		WHERE b.quantity > 0
		  AND NOT b.is_expired
		  AND p.expiry_control
		  AND b.expiry_date IS NOT NULL
		  AND b.expiry_date >= CURRENT_DATE
		  AND b.expiry_date <= CURRENT_DATE + $1 * INTERVAL '1 day'
		ORDER BY b.expiry_date
	`
	if err := r.db.SelectContext(ctx, &batches, query, days); err != nil {
		return nil, err
	}
	return batches, nil
}

// ListExpired returns batches past their expiry date that still hold stock
// and have not been flagged yet
func (r *BatchRepository) ListExpired(ctx context.Context) ([]*ExpiringBatch, error) {
	batches := []*ExpiringBatch{}
	query := `
		SELECT b.*, p.name AS product_name, p.sku AS product_sku
		FROM batches b
		JOIN products p ON p.id = b.product_id
		WHERE b.quantity > 0
		  AND NOT b.is_expired
		  AND p.expiry_control
		  AND b.expiry_date IS NOT NULL
		  AND b.expiry_date < CURRENT_DATE
		ORDER BY b.expiry_date
	`
	if err := r.db.SelectContext(ctx, &batches, query); err != nil {
		return nil, err
	}
	return batches, nil
}

// ListExpiredStock returns every expired batch that still holds stock,
// flagged or not. Reporting uses this, the sweep uses ListExpired.
func (r *BatchRepository) ListExpiredStock(ctx context.Context) ([]*ExpiringBatch, error) {
	batches := []*ExpiringBatch{}
	query := `
		SELECT b.*, p.name AS product_name, p.sku AS product_sku
		FROM batches b
		JOIN products p ON p.id = b.product_id
		WHERE b.quantity > 0
		  AND b.expiry_date IS NOT NULL
		  AND b.expiry_date < CURRENT_DATE
		ORDER BY b.expiry_date
	`
	if err := r.db.SelectContext(ctx, &batches, query); err != nil {
		return nil, err
	}
	return batches, nil
}

// Update updates a batch's lot number, quantity and expiry date
func (r *BatchRepository) Update(ctx context.Context, b *Batch) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE batches SET lot_number = $2, quantity = $3, expiry_date = $4 WHERE id = $1`,
		b.ID, b.LotNumber, b.Quantity, b.ExpiryDate)
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
		return errors.NotFound("batch")
	}
	return nil
}

// Delete removes a batch
func (r *BatchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM batches WHERE id = $1`, id)
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
		return errors.NotFound("batch")
	}
	return nil
}

// MarkExpired flips the one-way expired flag. Returns true when this call
// flipped it, false when the batch was already flagged, so the sweep stays
// idempotent under concurrent runs.
func (r *BatchRepository) MarkExpired(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE batches SET is_expired = true WHERE id = $1 AND NOT is_expired`, id)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// TotalQuantity sums the remaining stock across a product's batches
func (r *BatchRepository) TotalQuantity(ctx context.Context, productID string) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(quantity), 0) FROM batches WHERE product_id = $1`, productID)
	if err != nil {
		return 0, err
	}
	return total, nil
}
