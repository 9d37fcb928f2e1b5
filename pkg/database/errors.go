package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/maestranza/inventory-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

// IsUniqueViolation reports whether err is a unique constraint violation,
// optionally restricted to a specific constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code != "23505" {
		return false
	}
	if constraint == "" {
		return true
	}
	return strings.Contains(pqErr.Constraint, constraint)
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "movement_type_valid"):
		return errors.Validation(map[string]string{
			"type": "must be one of: IN, OUT, ADJUSTMENT",
		})

	case strings.Contains(constraint, "quantity_positive"):
		return errors.Validation(map[string]string{
			"quantity": "must be greater than zero",
		})

	case strings.Contains(constraint, "alert_type_valid"):
		return errors.Validation(map[string]string{
			"type": "must be one of: LOW_STOCK, EXPIRING_SOON, EXPIRED, CUSTOM",
		})

	case strings.Contains(constraint, "priority_valid"):
		return errors.Validation(map[string]string{
			"priority": "must be one of: low, medium, high, critical",
		})

	case strings.Contains(constraint, "po_status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: pending, ordered, received, cancelled",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "products_sku"):
		return "a product with this SKU already exists"
	case strings.Contains(constraint, "suppliers_rut"):
		return "a supplier with this RUT already exists"
	case strings.Contains(constraint, "users_username"):
		return "a user with this username already exists"
	case strings.Contains(constraint, "categories_name"):
		return "a category with this name already exists"
	case strings.Contains(constraint, "alerts_unread"):
		return "an unread alert of this type already exists for this item"
	default:
		return "a record with these values already exists"
	}
}
