package service

import (
	"context"
	"time"

	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/maestranza/inventory-backend/pkg/logger"
)

// ReportService builds read-only aggregate views over inventory data
type ReportService struct {
	products  *repository.ProductRepository
	batches   *repository.BatchRepository
	movements *repository.MovementRepository
	orders    *repository.PurchaseOrderRepository
	logger    *logger.Logger
}

// NewReportService creates a new report service
func NewReportService(
	products *repository.ProductRepository,
	batches *repository.BatchRepository,
	movements *repository.MovementRepository,
	orders *repository.PurchaseOrderRepository,
	log *logger.Logger,
) *ReportService {
	return &ReportService{
		products:  products,
		batches:   batches,
		movements: movements,
		orders:    orders,
		logger:    log,
	}
}

// InventoryReport summarizes the current state of the inventory plus movement
// activity over an optional period
type InventoryReport struct {
	TotalProducts  int                        `json:"total_products"`
	TotalUnits     int                        `json:"total_units"`
	TotalValuation float64                    `json:"total_valuation"`
	BelowMinimum   int                        `json:"below_minimum"`
	OutOfStock     int                        `json:"out_of_stock"`
	Movements      *repository.MovementTotals `json:"movements"`
	PeriodFrom     *time.Time                 `json:"period_from,omitempty"`
	PeriodTo       *time.Time                 `json:"period_to,omitempty"`
	GeneratedAt    string                     `json:"generated_at"`
}

// InventoryReport computes stock totals and valuation at current prices.
// Nil bounds leave the movement period open on that side.
func (s *ReportService) InventoryReport(ctx context.Context, from, to *time.Time) (*InventoryReport, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &InventoryReport{
		TotalProducts: len(products),
		PeriodFrom:    from,
		PeriodTo:      to,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	for _, p := range products {
		report.TotalUnits += p.Quantity
		report.TotalValuation += float64(p.Quantity) * p.UnitPrice
		if p.Quantity <= p.MinStock {
			report.BelowMinimum++
		}
		if p.Quantity == 0 {
			report.OutOfStock++
		}
	}

	totals, err := s.movements.TotalsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	report.Movements = totals
	return report, nil
}

// ConsumptionTrend reports a product's recent usage rate and how long current
// stock will last at that rate. DaysUntilDepletion is nil when there has been
// no consumption in the window.
type ConsumptionTrend struct {
	ProductID          string   `json:"product_id"`
	ProductName        string   `json:"product_name"`
	TotalOut           int      `json:"total_out"`
	DailyAverage       float64  `json:"daily_average"`
	CurrentQuantity    int      `json:"current_quantity"`
	DaysUntilDepletion *float64 `json:"days_until_depletion,omitempty"`
}

// ConsumptionTrends aggregates OUT movements over the given window.
// Days defaults to 30 when zero or negative.
func (s *ReportService) ConsumptionTrends(ctx context.Context, days int) ([]*ConsumptionTrend, error) {
	if days <= 0 {
		days = consumptionWindowDays
	}
	since := time.Now().AddDate(0, 0, -days)

	consumption, err := s.movements.ConsumptionSince(ctx, since)
	if err != nil {
		return nil, err
	}

	trends := make([]*ConsumptionTrend, 0, len(consumption))
	for _, c := range consumption {
		product, err := s.products.GetByID(ctx, c.ProductID)
		if err != nil {
			s.logger.Error().Err(err).Str("product_id", c.ProductID).Msg("failed to load product for trend")
			continue
		}

		trend := &ConsumptionTrend{
			ProductID:       c.ProductID,
			ProductName:     c.ProductName,
			TotalOut:        c.TotalOut,
			DailyAverage:    float64(c.TotalOut) / float64(days),
			CurrentQuantity: product.Quantity,
		}
		if trend.DailyAverage > 0 {
			depletion := float64(product.Quantity) / trend.DailyAverage
			trend.DaysUntilDepletion = &depletion
		}
		trends = append(trends, trend)
	}
	return trends, nil
}

// ProductConsumption details one product's usage over a window, day by day
type ProductConsumption struct {
	ConsumptionTrend
	WindowDays int                    `json:"window_days"`
	Daily      []*repository.DailyOut `json:"daily"`
}

// ProductConsumption builds the per-day usage breakdown for a single product.
// Days defaults to 30 when zero or negative.
func (s *ReportService) ProductConsumption(ctx context.Context, productID string, days int) (*ProductConsumption, error) {
	if days <= 0 {
		days = consumptionWindowDays
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -days)
	daily, err := s.movements.DailyOutSince(ctx, productID, since)
	if err != nil {
		return nil, err
	}

	report := &ProductConsumption{
		ConsumptionTrend: ConsumptionTrend{
			ProductID:       product.ID,
			ProductName:     product.Name,
			CurrentQuantity: product.Quantity,
		},
		WindowDays: days,
		Daily:      daily,
	}
	for _, d := range daily {
		report.TotalOut += d.Quantity
	}
	report.DailyAverage = float64(report.TotalOut) / float64(days)
	if report.DailyAverage > 0 {
		depletion := float64(product.Quantity) / report.DailyAverage
		report.DaysUntilDepletion = &depletion
	}
	return report, nil
}

// SupplierPerformance returns per-supplier order totals and fulfilment counts
func (s *ReportService) SupplierPerformance(ctx context.Context) ([]*repository.SupplierOrderStats, error) {
	return s.orders.StatsBySupplier(ctx)
}

// SupplierReport is one supplier's fulfilment record
type SupplierReport struct {
	repository.SupplierOrderStats
	CompletionRate float64 `json:"completion_rate"`
}

// SupplierDetail builds a single supplier's fulfilment record with its
// completion rate over all orders placed with it
func (s *ReportService) SupplierDetail(ctx context.Context, supplierID string) (*SupplierReport, error) {
	stats, err := s.orders.StatsForSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	report := &SupplierReport{SupplierOrderStats: *stats}
	if stats.TotalOrders > 0 {
		report.CompletionRate = float64(stats.Received) / float64(stats.TotalOrders)
	}
	return report, nil
}

// ExpiryReport lists batches expiring within the window alongside already
// expired stock.
type ExpiryReport struct {
	Expiring []*repository.ExpiringBatch `json:"expiring"`
	Expired  []*repository.ExpiringBatch `json:"expired"`
}

// ExpiryReport builds the expiring and expired batch lists in one call
func (s *ReportService) ExpiryReport(ctx context.Context, days int) (*ExpiryReport, error) {
	if days <= 0 {
		days = 30
	}

	expiring, err := s.batches.ListExpiringWithin(ctx, days)
	if err != nil {
		return nil, err
	}
	expired, err := s.batches.ListExpiredStock(ctx)
	if err != nil {
		return nil, err
	}

	return &ExpiryReport{Expiring: expiring, Expired: expired}, nil
}
