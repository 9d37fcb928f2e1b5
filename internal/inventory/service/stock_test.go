package service

import (
	"testing"
	"time"

	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/stretchr/testify/assert"
)

func TestLowStockPriority(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		minStock int
		want     string
	}{
		{"out of stock is critical", 0, 10, repository.PriorityCritical},
		{"at half minimum is high", 5, 10, repository.PriorityHigh},
		{"below half minimum is high", 3, 10, repository.PriorityHigh},
		{"just above half minimum is medium", 6, 10, repository.PriorityMedium},
		{"at minimum is medium", 10, 10, repository.PriorityMedium},
		{"zero minimum with stock is medium", 1, 0, repository.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LowStockPriority(tt.quantity, tt.minStock))
		})
	}
}

func TestAvailableKitCount(t *testing.T) {
	tests := []struct {
		name       string
		components []repository.KitComponent
		want       int
	}{
		{
			name:       "no components yields zero",
			components: nil,
			want:       0,
		},
		{
			name: "limited by scarcest component",
			components: []repository.KitComponent{
				{ProductID: "a", Quantity: 2, Available: 10},
				{ProductID: "b", Quantity: 3, Available: 4},
			},
			want: 1,
		},
		{
			name: "exact multiples",
			components: []repository.KitComponent{
				{ProductID: "a", Quantity: 2, Available: 10},
				{ProductID: "b", Quantity: 5, Available: 25},
			},
			want: 5,
		},
		{
			name: "component out of stock yields zero",
			components: []repository.KitComponent{
				{ProductID: "a", Quantity: 1, Available: 100},
				{ProductID: "b", Quantity: 4, Available: 3},
			},
			want: 0,
		},
		{
			name: "integer division truncates",
			components: []repository.KitComponent{
				{ProductID: "a", Quantity: 3, Available: 11},
			},
			want: 3,
		},
		{
			name: "zero required quantity yields zero",
			components: []repository.KitComponent{
				{ProductID: "a", Quantity: 0, Available: 100},
				{ProductID: "b", Quantity: 2, Available: 10},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AvailableKitCount(tt.components))
		})
	}
}

func TestExpiryPriority(t *testing.T) {
	tests := []struct {
		name      string
		daysUntil int
		want      string
	}{
		{"today is critical", 0, repository.PriorityCritical},
		{"one week is critical", 7, repository.PriorityCritical},
		{"eight days is high", 8, repository.PriorityHigh},
		{"fifteen days is high", 15, repository.PriorityHigh},
		{"sixteen days is medium", 16, repository.PriorityMedium},
		{"a month out is medium", 30, repository.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpiryPriority(tt.daysUntil))
		})
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Now()

	assert.Equal(t, 0, DaysUntil(now))
	assert.Equal(t, 1, DaysUntil(now.AddDate(0, 0, 1)))
	assert.Equal(t, 7, DaysUntil(now.AddDate(0, 0, 7)))
	assert.Equal(t, -1, DaysUntil(now.AddDate(0, 0, -1)))
}
