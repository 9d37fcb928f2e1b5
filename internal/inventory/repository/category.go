package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/maestranza/inventory-backend/pkg/database"
	"github.com/maestranza/inventory-backend/pkg/errors"
)

// Category groups products by type of material
type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CategoryRepository handles category persistence
type CategoryRepository struct {
	db *database.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, c *Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO categories (id, name, description) VALUES ($1, $2, $3) RETURNING created_at`,
		c.ID, c.Name, c.Description,
	).Scan(&c.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// GetByID gets a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*Category, error) {
	var c Category
	err := r.db.GetContext(ctx, &c, `SELECT * FROM categories WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("category")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]*Category, error) {
	categories := []*Category{}
	if err := r.db.SelectContext(ctx, &categories, `SELECT * FROM categories ORDER BY name`); err != nil {
		return nil, err
	}
	return categories, nil
}

// Update updates a category
func (r *CategoryRepository) Update(ctx context.Context, c *Category) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = $2, description = $3 WHERE id = $1`,
		c.ID, c.Name, c.Description)
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
		return errors.NotFound("category")
	}
	return nil
}

// Delete removes a category
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
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
		return errors.NotFound("category")
	}
	return nil
}
