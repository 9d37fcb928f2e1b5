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

// Kit is a named bundle of products issued together
type Kit struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	Components  []KitComponent `db:"-" json:"components"`
}

// KitComponent is one product line of a kit
type KitComponent struct {
	KitID       string `db:"kit_id" json:"-"`
	ProductID   string `db:"product_id" json:"product_id"`
	ProductName string `db:"product_name" json:"product_name"`
	Quantity    int    `db:"quantity" json:"quantity"`
	Available   int    `db:"available" json:"available"`
}

// KitRepository handles kit persistence
type KitRepository struct {
	db *database.DB
}

// NewKitRepository creates a new kit repository
func NewKitRepository(db *database.DB) *KitRepository {
	return &KitRepository{db: db}
}

// Create creates a kit with its components in one transaction
func (r *KitRepository) Create(ctx context.Context, kit *Kit) error {
	if kit.ID == "" {
		kit.ID = uuid.New().String()
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO kits (id, name, description) VALUES ($1, $2, $3) RETURNING created_at`,
			kit.ID, kit.Name, kit.Description,
		).Scan(&kit.CreatedAt)
		if err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return err
		}

		for i := range kit.Components {
			kit.Components[i].KitID = kit.ID
			_, err := tx.ExecContext(ctx,
				`INSERT INTO kit_components (kit_id, product_id, quantity) VALUES ($1, $2, $3)`,
				kit.ID, kit.Components[i].ProductID, kit.Components[i].Quantity)
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

// GetByID gets a kit with its components and their current availability
func (r *KitRepository) GetByID(ctx context.Context, id string) (*Kit, error) {
	var kit Kit
	err := r.db.GetContext(ctx, &kit,
		`SELECT id, name, description, created_at FROM kits WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("kit")
	}
	if err != nil {
		return nil, err
	}

	components, err := r.listComponents(ctx, id)
	if err != nil {
		return nil, err
	}
	kit.Components = components
	return &kit, nil
}

// List returns all kits with their components
func (r *KitRepository) List(ctx context.Context) ([]*Kit, error) {
	kits := []*Kit{}
	err := r.db.SelectContext(ctx, &kits,
		`SELECT id, name, description, created_at FROM kits ORDER BY name`)
	if err != nil {
		return nil, err
	}

	for _, kit := range kits {
		components, err := r.listComponents(ctx, kit.ID)
		if err != nil {
			return nil, err
		}
		kit.Components = components
	}
	return kits, nil
}

func (r *KitRepository) listComponents(ctx context.Context, kitID string) ([]KitComponent, error) {
	components := []KitComponent{}
	err := r.db.SelectContext(ctx, &components, `
		SELECT kc.kit_id, kc.product_id, p.name AS product_name, kc.quantity, p.quantity AS available
		FROM kit_components kc
		JOIN products p ON p.id = kc.product_id
		WHERE kc.kit_id = $1
		ORDER BY p.name
	`, kitID)
	if err != nil {
		return nil, err
	}
	return components, nil
}

// Update replaces a kit's metadata and component list
func (r *KitRepository) Update(ctx context.Context, kit *Kit) error {
	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE kits SET name = $2, description = $3 WHERE id = $1`,
			kit.ID, kit.Name, kit.Description)
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
			return errors.NotFound("kit")
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM kit_components WHERE kit_id = $1`, kit.ID); err != nil {
			return err
		}
		for i := range kit.Components {
			kit.Components[i].KitID = kit.ID
			_, err := tx.ExecContext(ctx,
				`INSERT INTO kit_components (kit_id, product_id, quantity) VALUES ($1, $2, $3)`,
				kit.ID, kit.Components[i].ProductID, kit.Components[i].Quantity)
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

// Delete removes a kit and its components
func (r *KitRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM kits WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("kit")
	}
	return nil
}
