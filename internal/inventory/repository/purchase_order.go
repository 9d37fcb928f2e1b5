package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/maestranza/inventory-backend/pkg/database"
	"github.com/maestranza/inventory-backend/pkg/errors"
)

// Purchase order statuses
const (
	POStatusPending   = "pending"
	POStatusOrdered   = "ordered"
	POStatusReceived  = "received"
	POStatusCancelled = "cancelled"
)

// PurchaseOrder is an order placed with a supplier
type PurchaseOrder struct {
	ID               string              `db:"id" json:"id"`
	SupplierID       string              `db:"supplier_id" json:"supplier_id"`
	Status           string              `db:"status" json:"status"`
	Notes            string              `db:"notes" json:"notes"`
	OrderDate        time.Time           `db:"order_date" json:"order_date"`
	ExpectedDelivery *time.Time          `db:"expected_delivery" json:"expected_delivery,omitempty"`
	ReceivedAt       *time.Time          `db:"received_at" json:"received_at,omitempty"`
	CreatedBy        *string             `db:"created_by" json:"created_by,omitempty"`
	CreatedAt        time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time           `db:"updated_at" json:"updated_at"`
	Items            []PurchaseOrderItem `db:"-" json:"items"`
}

// PurchaseOrderItem is one product line of a purchase order
type PurchaseOrderItem struct {
	ID        string  `db:"id" json:"id"`
	OrderID   string  `db:"order_id" json:"-"`
	ProductID string  `db:"product_id" json:"product_id"`
	Quantity  int     `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
}

// PurchaseOrderRepository handles purchase order persistence
type PurchaseOrderRepository struct {
	db *database.DB
}

// NewPurchaseOrderRepository creates a new purchase order repository
func NewPurchaseOrderRepository(db *database.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

// Create creates a purchase order with its items in one transaction
func (r *PurchaseOrderRepository) Create(ctx context.Context, po *PurchaseOrder) error {
	if po.ID == "" {
		po.ID = uuid.New().String()
	}
	if po.Status == "" {
		po.Status = POStatusPending
	}
	if po.OrderDate.IsZero() {
		po.OrderDate = time.Now()
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO purchase_orders (id, supplier_id, status, notes, order_date, expected_delivery, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at
		`, po.ID, po.SupplierID, po.Status, po.Notes, po.OrderDate, po.ExpectedDelivery, po.CreatedBy,
		).Scan(&po.CreatedAt, &po.UpdatedAt)
		if err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return err
		}

		for i := range po.Items {
			if po.Items[i].ID == "" {
				po.Items[i].ID = uuid.New().String()
			}
			po.Items[i].OrderID = po.ID
			_, err := tx.ExecContext(ctx, `
				INSERT INTO purchase_order_items (id, order_id, product_id, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5)
			`, po.Items[i].ID, po.ID, po.Items[i].ProductID, po.Items[i].Quantity, po.Items[i].UnitPrice)
			if err != nil {
				if appErr := database.MapPQError(err); appErr != nil {
					return appErr
				}
				return err
			}
		}
		return nil
	})
}

// GetByID gets a purchase order with its items
func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id string) (*PurchaseOrder, error) {
	var po PurchaseOrder
	err := r.db.GetContext(ctx, &po, `
		SELECT id, supplier_id, status, notes, order_date, expected_delivery, received_at, created_by, created_at, updated_at
		FROM purchase_orders WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("purchase order")
	}
	if err != nil {
		return nil, err
	}

	items := []PurchaseOrderItem{}
	err = r.db.SelectContext(ctx, &items,
		`SELECT * FROM purchase_order_items WHERE order_id = $1`, id)
	if err != nil {
		return nil, err
	}
	po.Items = items
	return &po, nil
}

// List returns purchase orders, newest first, optionally filtered by status
func (r *PurchaseOrderRepository) List(ctx context.Context, status *string) ([]*PurchaseOrder, error) {
	orders := []*PurchaseOrder{}
	var err error
	if status != nil {
		err = r.db.SelectContext(ctx, &orders, `
			SELECT id, supplier_id, status, notes, order_date, expected_delivery, received_at, created_by, created_at, updated_at
			FROM purchase_orders WHERE status = $1 ORDER BY created_at DESC
		`, *status)
	} else {
		err = r.db.SelectContext(ctx, &orders, `
			SELECT id, supplier_id, status, notes, order_date, expected_delivery, received_at, created_by, created_at, updated_at
			FROM purchase_orders ORDER BY created_at DESC
		`)
	}
	if err != nil {
		return nil, err
	}

	for _, po := range orders {
		items := []PurchaseOrderItem{}
		if err := r.db.SelectContext(ctx, &items,
			`SELECT * FROM purchase_order_items WHERE order_id = $1`, po.ID); err != nil {
			return nil, err
		}
		po.Items = items
	}
	return orders, nil
}

// UpdateStatus moves a purchase order to a new status. Receiving stamps
// received_at.
func (r *PurchaseOrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE purchase_orders
		SET status = $2,
		    received_at = CASE WHEN $2 = 'received' THEN NOW() ELSE received_at END,
		    updated_at = NOW()
		WHERE id = $1`, id, status)
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
		return errors.NotFound("purchase order")
	}
	return nil
}

// SupplierOrderStats aggregates order counts per supplier
type SupplierOrderStats struct {
	SupplierID      string   `db:"supplier_id" json:"supplier_id"`
	SupplierName    string   `db:"supplier_name" json:"supplier_name"`
	TotalOrders     int      `db:"total_orders" json:"total_orders"`
	Received        int      `db:"received" json:"received"`
	Cancelled       int      `db:"cancelled" json:"cancelled"`
	AvgDeliveryDays *float64 `db:"avg_delivery_days" json:"avg_delivery_days,omitempty"`
}

// StatsBySupplier returns per-supplier order totals for reporting
func (r *PurchaseOrderRepository) StatsBySupplier(ctx context.Context) ([]*SupplierOrderStats, error) {
	stats := []*SupplierOrderStats{}
	err := r.db.SelectContext(ctx, &stats, `
		SELECT s.id AS supplier_id, s.name AS supplier_name,
		       COUNT(po.id) AS total_orders,
		       COUNT(po.id) FILTER (WHERE po.status = 'received') AS received,
		       COUNT(po.id) FILTER (WHERE po.status = 'cancelled') AS cancelled,
		       AVG(po.received_at::date - po.order_date) FILTER (WHERE po.received_at IS NOT NULL) AS avg_delivery_days
		FROM suppliers s
		LEFT JOIN purchase_orders po ON po.supplier_id = s.id
		GROUP BY s.id, s.name
		ORDER BY total_orders DESC
	`)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// StatsForSupplier returns one supplier's order totals. A supplier with no
// orders still gets a row.
func (r *PurchaseOrderRepository) StatsForSupplier(ctx context.Context, supplierID string) (*SupplierOrderStats, error) {
	var stats SupplierOrderStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT s.id AS supplier_id, s.name AS supplier_name,
		       COUNT(po.id) AS total_orders,
		       COUNT(po.id) FILTER (WHERE po.status = 'received') AS received,
		       COUNT(po.id) FILTER (WHERE po.status = 'cancelled') AS cancelled,
		       AVG(po.received_at::date - po.order_date) FILTER (WHERE po.received_at IS NOT NULL) AS avg_delivery_days
		FROM suppliers s
		LEFT JOIN purchase_orders po ON po.supplier_id = s.id
		WHERE s.id = $1
		GROUP BY s.id, s.name
	`, supplierID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("supplier")
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Delete removes a purchase order and its items
func (r *PurchaseOrderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("purchase order")
	}
	return nil
}
