package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/maestranza/inventory-backend/pkg/database"
	"github.com/maestranza/inventory-backend/pkg/errors"
)

// Project is a job or work order that stock can be issued against
type Project struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ProjectRepository handles project persistence
type ProjectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *database.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, p *Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = "active"
	}

	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO projects (id, name, description, status) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		p.ID, p.Name, p.Description, p.Status,
	).Scan(&p.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// GetByID gets a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*Project, error) {
	var p Project
	err := r.db.GetContext(ctx, &p, `SELECT * FROM projects WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("project")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all projects ordered by name
func (r *ProjectRepository) List(ctx context.Context) ([]*Project, error) {
	projects := []*Project{}
	if err := r.db.SelectContext(ctx, &projects, `SELECT * FROM projects ORDER BY name`); err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates a project
func (r *ProjectRepository) Update(ctx context.Context, p *Project) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = $2, description = $3, status = $4 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Status)
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
		return errors.NotFound("project")
	}
	return nil
}

// Delete removes a project
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
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
		return errors.NotFound("project")
	}
	return nil
}
