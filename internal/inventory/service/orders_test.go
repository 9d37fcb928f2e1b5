package service

import (
	"testing"

	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/stretchr/testify/assert"
)

func TestTransitionAllowed(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to ordered", repository.POStatusPending, repository.POStatusOrdered, true},
		{"pending to cancelled", repository.POStatusPending, repository.POStatusCancelled, true},
		{"pending straight to received", repository.POStatusPending, repository.POStatusReceived, false},
		{"ordered to received", repository.POStatusOrdered, repository.POStatusReceived, true},
		{"ordered to cancelled", repository.POStatusOrdered, repository.POStatusCancelled, true},
		{"ordered back to pending", repository.POStatusOrdered, repository.POStatusPending, false},
		{"received is final", repository.POStatusReceived, repository.POStatusCancelled, false},
		{"cancelled is final", repository.POStatusCancelled, repository.POStatusOrdered, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, transitionAllowed(tt.from, tt.to))
		})
	}
}

func TestNormalizeRUT(t *testing.T) {
	assert.Equal(t, "76123456-K", NormalizeRUT("76.123.456-k"))
	assert.Equal(t, "76123456-K", NormalizeRUT("  76.123.456-K "))
	assert.Equal(t, "12345678-5", NormalizeRUT("12345678-5"))
	assert.Equal(t, "", NormalizeRUT("   "))
}
