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

// Movement types
const (
	MovementIn         = "IN"
	MovementOut        = "OUT"
	MovementAdjustment = "ADJUSTMENT"
)

// Movement records a stock change. Quantity is always the positive magnitude
// of the change; PreviousQuantity and NewQuantity capture the before and after
// stock levels so the history is auditable without replaying it.
type Movement struct {
	ID               string    `db:"id" json:"id"`
	ProductID        string    `db:"product_id" json:"product_id"`
	BatchID          *string   `db:"batch_id" json:"batch_id,omitempty"`
	Type             string    `db:"type" json:"type"`
	Quantity         int       `db:"quantity" json:"quantity"`
	PreviousQuantity int       `db:"previous_quantity" json:"previous_quantity"`
	NewQuantity      int       `db:"new_quantity" json:"new_quantity"`
	Reason           string    `db:"reason" json:"reason"`
	ReferenceNumber  string    `db:"reference_number" json:"reference_number,omitempty"`
	ProjectID        *string   `db:"project_id" json:"project_id,omitempty"`
	PerformedBy      *string   `db:"performed_by" json:"performed_by,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// MovementFilter narrows List results
type MovementFilter struct {
	ProductID *string
	ProjectID *string
	Type      *string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// ProductConsumption aggregates OUT quantities per product over a window
type ProductConsumption struct {
	ProductID   string `db:"product_id" json:"product_id"`
	ProductName string `db:"product_name" json:"product_name"`
	TotalOut    int    `db:"total_out" json:"total_out"`
}

// MovementRepository handles movement persistence
type MovementRepository struct {
	db *database.DB
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *database.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// CreateTx inserts a movement inside the transaction that also updates the
// product's stock level, so history and stock never diverge.
func (r *MovementRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, m *Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	query := `
		INSERT INTO movements (id, product_id, batch_id, type, quantity,
			previous_quantity, new_quantity, reason, reference_number, project_id, performed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	err := tx.QueryRowxContext(ctx, query,
		m.ID, m.ProductID, m.BatchID, m.Type, m.Quantity,
		m.PreviousQuantity, m.NewQuantity, m.Reason, m.ReferenceNumber, m.ProjectID, m.PerformedBy,
	).Scan(&m.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// GetByID gets a movement by ID
func (r *MovementRepository) GetByID(ctx context.Context, id string) (*Movement, error) {
	var m Movement
	err := r.db.GetContext(ctx, &m, `SELECT * FROM movements WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("movement")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns movements matching the filter, newest first, plus the total count
func (r *MovementRepository) List(ctx context.Context, filter MovementFilter) ([]*Movement, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argN := 1

	if filter.ProductID != nil {
		where += fmt.Sprintf(" AND product_id = $%d", argN)
		args = append(args, *filter.ProductID)
		argN++
	}
	if filter.ProjectID != nil {
		where += fmt.Sprintf(" AND project_id = $%d", argN)
		args = append(args, *filter.ProjectID)
		argN++
	}
	if filter.Type != nil {
		where += fmt.Sprintf(" AND type = $%d", argN)
		args = append(args, *filter.Type)
		argN++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", argN)
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", argN)
		args = append(args, *filter.To)
		argN++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM movements "+where, args...); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf("SELECT * FROM movements %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d", where, argN, argN+1)
	args = append(args, limit, filter.Offset)

	movements := []*Movement{}
	if err := r.db.SelectContext(ctx, &movements, query, args...); err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

// TotalOutSince sums OUT quantities for a product since the given time
func (r *MovementRepository) TotalOutSince(ctx context.Context, productID string, since time.Time) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM movements
		WHERE product_id = $1 AND type = 'OUT' AND created_at >= $2
	`, productID, since)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// MovementTotals aggregates movement counts and units over a period
type MovementTotals struct {
	InCount  int `db:"in_count" json:"in_count"`
	InUnits  int `db:"in_units" json:"in_units"`
	OutCount int `db:"out_count" json:"out_count"`
	OutUnits int `db:"out_units" json:"out_units"`
}

// TotalsBetween aggregates movement counts and moved units inside the period.
// Nil bounds leave that side of the range open.
func (r *MovementRepository) TotalsBetween(ctx context.Context, from, to *time.Time) (*MovementTotals, error) {
	var totals MovementTotals
	err := r.db.GetContext(ctx, &totals, `
		SELECT COUNT(*) FILTER (WHERE type = 'IN') AS in_count,
		       COALESCE(SUM(quantity) FILTER (WHERE type = 'IN'), 0) AS in_units,
		       COUNT(*) FILTER (WHERE type = 'OUT') AS out_count,
		       COALESCE(SUM(quantity) FILTER (WHERE type = 'OUT'), 0) AS out_units
		FROM movements
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at < $2)
	`, from, to)
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// DailyOut is one day of OUT volume for a product
type DailyOut struct {
	Day      time.Time `db:"day" json:"day"`
	Quantity int       `db:"quantity" json:"quantity"`
}

// DailyOutSince returns a product's OUT volume per day since the given time.
// Days without movements are absent.
func (r *MovementRepository) DailyOutSince(ctx context.Context, productID string, since time.Time) ([]*DailyOut, error) {
	rows := []*DailyOut{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT date_trunc('day', created_at) AS day, COALESCE(SUM(quantity), 0) AS quantity
		FROM movements
		WHERE product_id = $1 AND type = 'OUT' AND created_at >= $2
		GROUP BY day
		ORDER BY day
	`, productID, since)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ConsumptionSince aggregates OUT quantities per product since the given time,
// heaviest consumers first.
func (r *MovementRepository) ConsumptionSince(ctx context.Context, since time.Time) ([]*ProductConsumption, error) {
	rows := []*ProductConsumption{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT m.product_id, p.name AS product_name, COALESCE(SUM(m.quantity), 0) AS total_out
		FROM movements m
		JOIN products p ON p.id = m.product_id
		WHERE m.type = 'OUT' AND m.created_at >= $1
		GROUP BY m.product_id, p.name
		ORDER BY total_out DESC
	`, since)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
