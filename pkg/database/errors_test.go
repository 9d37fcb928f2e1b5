package database

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPQError_UniqueViolation(t *testing.T) {
	err := &pq.Error{Code: "23505", Constraint: "products_sku_key"}

	appErr := MapPQError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
	assert.Equal(t, "a product with this SKU already exists", appErr.Message)
}

func TestMapPQError_CheckConstraints(t *testing.T) {
	tests := []struct {
		constraint string
		field      string
	}{
		{"movements_movement_type_valid", "type"},
		{"movements_quantity_positive", "quantity"},
		{"alerts_alert_type_valid", "type"},
		{"alerts_priority_valid", "priority"},
		{"purchase_orders_po_status_valid", "status"},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			err := &pq.Error{Code: "23514", Constraint: tt.constraint}

			appErr := MapPQError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
			assert.Contains(t, appErr.Details, tt.field)
		})
	}
}

func TestMapPQError_ForeignKeyViolation(t *testing.T) {
	err := &pq.Error{Code: "23503"}

	appErr := MapPQError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "BAD_REQUEST", appErr.Code)
}

func TestMapPQError_NonPQError(t *testing.T) {
	assert.Nil(t, MapPQError(fmt.Errorf("connection refused")))
}

func TestIsUniqueViolation(t *testing.T) {
	unreadErr := &pq.Error{Code: "23505", Constraint: "alerts_unread_product_type_key"}

	assert.True(t, IsUniqueViolation(unreadErr, "alerts_unread"))
	assert.True(t, IsUniqueViolation(unreadErr, ""))
	assert.False(t, IsUniqueViolation(unreadErr, "products_sku"))
	assert.False(t, IsUniqueViolation(fmt.Errorf("plain error"), "alerts_unread"))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}, ""))
}
