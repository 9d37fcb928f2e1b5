package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maestranza/inventory-backend/pkg/database"
	"github.com/maestranza/inventory-backend/pkg/errors"
)

// Alert types
const (
	AlertLowStock     = "LOW_STOCK"
	AlertExpiringSoon = "EXPIRING_SOON"
	AlertExpired      = "EXPIRED"
	AlertCustom       = "CUSTOM"
)

// Alert priorities
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Alert is a generated stock or expiry notification
type Alert struct {
	ID         string     `db:"id" json:"id"`
	Type       string     `db:"type" json:"type"`
	Priority   string     `db:"priority" json:"priority"`
	Message    string     `db:"message" json:"message"`
	ProductID  *string    `db:"product_id" json:"product_id,omitempty"`
	BatchID    *string    `db:"batch_id" json:"batch_id,omitempty"`
	IsRead     bool       `db:"is_read" json:"is_read"`
	AssignedTo *string    `db:"assigned_to" json:"assigned_to,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ReadAt     *time.Time `db:"read_at" json:"read_at,omitempty"`
}

// AlertFilter narrows List results
type AlertFilter struct {
	Type       *string
	Priority   *string
	IsRead     *bool
	AssignedTo *string
	Limit      int
	Offset     int
}

// AlertStatistics summarizes the alert table for the dashboard
type AlertStatistics struct {
	Total      int            `json:"total"`
	Unread     int            `json:"unread"`
	ByType     map[string]int `json:"by_type"`
	ByPriority map[string]int `json:"by_priority"`
}

// AlertRepository handles alert persistence
type AlertRepository struct {
	db *database.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *database.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create creates a new alert. Partial unique indexes on (type, product_id) and
// (type, batch_id) reject a second unread alert for the same subject, so a
// unique violation here means another generator already covered it.
func (r *AlertRepository) Create(ctx context.Context, a *Alert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	query := `
		INSERT INTO alerts (id, type, priority, message, product_id, batch_id, assigned_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		a.ID, a.Type, a.Priority, a.Message, a.ProductID, a.BatchID, a.AssignedTo,
	).Scan(&a.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// GetByID gets an alert by ID
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*Alert, error) {
	var a Alert
	err := r.db.GetContext(ctx, &a, `SELECT * FROM alerts WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("alert")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns alerts matching the filter, critical first then newest,
// plus the total count for pagination.
func (r *AlertRepository) List(ctx context.Context, filter AlertFilter) ([]*Alert, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argN := 1

	if filter.Type != nil {
		where += fmt.Sprintf(" AND type = $%d", argN)
		args = append(args, *filter.Type)
		argN++
	}
	if filter.Priority != nil {
		where += fmt.Sprintf(" AND priority = $%d", argN)
		args = append(args, *filter.Priority)
		argN++
	}
	if filter.IsRead != nil {
		where += fmt.Sprintf(" AND is_read = $%d", argN)
		args = append(args, *filter.IsRead)
		argN++
	}
	if filter.AssignedTo != nil {
		where += fmt.Sprintf(" AND assigned_to = $%d", argN)
		args = append(args, *filter.AssignedTo)
		argN++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM alerts "+where, args...); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT * FROM alerts %s
		ORDER BY CASE priority
			WHEN 'critical' THEN 0
			WHEN 'high' THEN 1
			WHEN 'medium' THEN 2
			ELSE 3
		END, created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argN, argN+1)
	args = append(args, limit, filter.Offset)

	alerts := []*Alert{}
	if err := r.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

// ExistsUnread reports whether an unread alert of the given type already
// covers the product, or the batch when batchID is set.
func (r *AlertRepository) ExistsUnread(ctx context.Context, alertType string, productID string, batchID *string) (bool, error) {
	var exists bool
	var err error
	if batchID != nil {
		err = r.db.GetContext(ctx, &exists, `
			SELECT EXISTS (
				SELECT 1 FROM alerts
				WHERE type = $1 AND batch_id = $2 AND is_read = false
			)
		`, alertType, *batchID)
	} else {
		err = r.db.GetContext(ctx, &exists, `
			SELECT EXISTS (
				SELECT 1 FROM alerts
				WHERE type = $1 AND product_id = $2 AND batch_id IS NULL AND is_read = false
			)
		`, alertType, productID)
	}
	if err != nil {
		return false, err
	}
	return exists, nil
}

// MarkRead marks an alert as read. Marking an unknown or already-read alert
// is not an error.
func (r *AlertRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET is_read = true, read_at = NOW() WHERE id = $1 AND is_read = false`, id)
	return err
}

// MarkAllRead marks every unread alert as read and returns how many changed
func (r *AlertRepository) MarkAllRead(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET is_read = true, read_at = NOW() WHERE is_read = false`)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

// Assign assigns an alert to a user. Assigning an unknown alert is not an error.
func (r *AlertRepository) Assign(ctx context.Context, id, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET assigned_to = $2 WHERE id = $1`, id, userID)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// CountUnread returns the number of unread alerts
func (r *AlertRepository) CountUnread(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM alerts WHERE is_read = false`); err != nil {
		return 0, err
	}
	return count, nil
}

// Statistics aggregates alert counts by type and priority
func (r *AlertRepository) Statistics(ctx context.Context) (*AlertStatistics, error) {
	stats := &AlertStatistics{
		ByType:     map[string]int{},
		ByPriority: map[string]int{},
	}

	if err := r.db.GetContext(ctx, &stats.Total, `SELECT COUNT(*) FROM alerts`); err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &stats.Unread, `SELECT COUNT(*) FROM alerts WHERE is_read = false`); err != nil {
		return nil, err
	}

	typeRows := []struct {
		Type  string `db:"type"`
		Count int    `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &typeRows,
		`SELECT type, COUNT(*) AS count FROM alerts GROUP BY type`); err != nil {
		return nil, err
	}
	for _, row := range typeRows {
		stats.ByType[row.Type] = row.Count
	}

	prioRows := []struct {
		Priority string `db:"priority"`
		Count    int    `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &prioRows,
		`SELECT priority, COUNT(*) AS count FROM alerts GROUP BY priority`); err != nil {
		return nil, err
	}
	for _, row := range prioRows {
		stats.ByPriority[row.Priority] = row.Count
	}

	return stats, nil
}

// ListUnreadByPriority returns up to limit unread alerts with the given priority
func (r *AlertRepository) ListUnreadByPriority(ctx context.Context, priority string, limit int) ([]*Alert, error) {
	alerts := []*Alert{}
	err := r.db.SelectContext(ctx, &alerts, `
		SELECT * FROM alerts
		WHERE is_read = false AND priority = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, priority, limit)
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// ListRecent returns the newest alerts regardless of state
func (r *AlertRepository) ListRecent(ctx context.Context, limit int) ([]*Alert, error) {
	alerts := []*Alert{}
	err := r.db.SelectContext(ctx, &alerts,
		`SELECT * FROM alerts ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// DeleteOld removes read alerts older than the given number of days
func (r *AlertRepository) DeleteOld(ctx context.Context, days int) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM alerts
		WHERE is_read = true AND created_at < NOW() - $1 * INTERVAL '1 day'
	`, days)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}
