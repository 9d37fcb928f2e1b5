package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/maestranza/inventory-backend/pkg/database"
	"github.com/maestranza/inventory-backend/pkg/errors"
)

// Supplier is a vendor identified by its Chilean RUT
type Supplier struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	RUT         string    `db:"rut" json:"rut"`
	ContactName string    `db:"contact_name" json:"contact_name"`
	Email       string    `db:"email" json:"email"`
	Phone       string    `db:"phone" json:"phone"`
	Address     string    `db:"address" json:"address"`
	Notes       string    `db:"notes" json:"notes"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SupplierRepository handles supplier persistence
type SupplierRepository struct {
	db *database.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *database.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// Create creates a new supplier
func (r *SupplierRepository) Create(ctx context.Context, s *Supplier) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	query := `
		INSERT INTO suppliers (id, name, rut, contact_name, email, phone, address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		s.ID, s.Name, s.RUT, s.ContactName, s.Email, s.Phone, s.Address, s.Notes,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// GetByID gets a supplier by ID
func (r *SupplierRepository) GetByID(ctx context.Context, id string) (*Supplier, error) {
	var s Supplier
	err := r.db.GetContext(ctx, &s, `SELECT * FROM suppliers WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("supplier")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns all suppliers ordered by name
func (r *SupplierRepository) List(ctx context.Context) ([]*Supplier, error) {
	suppliers := []*Supplier{}
	if err := r.db.SelectContext(ctx, &suppliers, `SELECT * FROM suppliers ORDER BY name`); err != nil {
		return nil, err
	}
	return suppliers, nil
}

// Update updates a supplier
func (r *SupplierRepository) Update(ctx context.Context, s *Supplier) error {
	query := `
		UPDATE suppliers
		SET name = $2, rut = $3, contact_name = $4, email = $5, phone = $6,
		    address = $7, notes = $8, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.RUT, s.ContactName, s.Email, s.Phone, s.Address, s.Notes)
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
		return errors.NotFound("supplier")
	}
	return nil
}

// Delete removes a supplier
func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
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
		return errors.NotFound("supplier")
	}
	return nil
}
