package service

import (
	"context"
	"fmt"
	"time"

	"github.com/maestranza/inventory-backend/internal/inventory/events"
	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/maestranza/inventory-backend/pkg/database"
	"github.com/maestranza/inventory-backend/pkg/logger"
)

// AlertService generates and manages stock and expiry alerts
type AlertService struct {
	products  *repository.ProductRepository
	batches   *repository.BatchRepository
	alerts    *repository.AlertRepository
	sysConfig *repository.SystemConfigRepository
	stock     *StockService
	publisher *events.InventoryEventPublisher
	logger    *logger.Logger
}

// NewAlertService creates a new alert service
func NewAlertService(
	products *repository.ProductRepository,
	batches *repository.BatchRepository,
	alerts *repository.AlertRepository,
	sysConfig *repository.SystemConfigRepository,
	stock *StockService,
	publisher *events.InventoryEventPublisher,
	log *logger.Logger,
) *AlertService {
	return &AlertService{
		products:  products,
		batches:   batches,
		alerts:    alerts,
		sysConfig: sysConfig,
		stock:     stock,
		publisher: publisher,
		logger:    log,
	}
}

// GenerateResult counts the alerts created by one generation pass
type GenerateResult struct {
	LowStock int `json:"low_stock"`
	Expiring int `json:"expiring"`
	Expired  int `json:"expired"`
	Total    int `json:"total"`
}

// GenerateAll runs every alert generator in a fixed order: low stock first,
// then expiring batches, then expired batches. Generators log and continue on
// per-row errors so one bad record does not block the pass.
func (s *AlertService) GenerateAll(ctx context.Context) (*GenerateResult, error) {
	result := &GenerateResult{}

	generators := []struct {
		name string
		fn   func(context.Context) (int, error)
	}{
		{"low_stock", s.generateLowStock},
		{"expiring", s.generateExpiring},
		{"expired", s.generateExpired},
	}

	var lastErr error
	for _, gen := range generators {
		created, err := gen.fn(ctx)
		if err != nil {
			s.logger.Error().Err(err).Str("generator", gen.name).Msg("alert generation failed")
			lastErr = err
		}
		switch gen.name {
		case "low_stock":
			result.LowStock = created
		case "expiring":
			result.Expiring = created
		case "expired":
			result.Expired = created
		}
	}

	result.Total = result.LowStock + result.Expiring + result.Expired
	return result, lastErr
}

// generateLowStock creates LOW_STOCK alerts for products at or below minimum
func (s *AlertService) generateLowStock(ctx context.Context) (int, error) {
	products, err := s.products.ListBelowMinStock(ctx)
	if err != nil {
		return 0, fmt.Errorf("generateLowStock: list products: %w", err)
	}

	created := 0
	for _, product := range products {
		alert := &repository.Alert{
			Type:      repository.AlertLowStock,
			Priority:  LowStockPriority(product.Quantity, product.MinStock),
			Message:   fmt.Sprintf("%s (%s) stock is at %d, minimum is %d", product.Name, product.SKU, product.Quantity, product.MinStock),
			ProductID: &product.ID,
		}
		if s.createDeduped(ctx, alert, product.ID, nil) {
			created++
		}
	}
	return created, nil
}

// generateExpiring creates EXPIRING_SOON alerts for batches inside the
// configured warning window.
func (s *AlertService) generateExpiring(ctx context.Context) (int, error) {
	warningDays, err := s.sysConfig.GetInt(ctx, repository.ConfigExpiryWarningDays, 30)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read expiry warning window, using default")
	}

	batches, err := s.batches.ListExpiringWithin(ctx, warningDays)
	if err != nil {
		return 0, fmt.Errorf("generateExpiring: list batches: %w", err)
	}

	created := 0
	for _, batch := range batches {
		if batch.ExpiryDate == nil {
			continue
		}
		daysUntil := DaysUntil(*batch.ExpiryDate)

		alert := &repository.Alert{
			Type:      repository.AlertExpiringSoon,
			Priority:  ExpiryPriority(daysUntil),
			Message:   fmt.Sprintf("%s lot %s expires in %d days", batch.ProductName, batch.LotNumber, daysUntil),
			ProductID: &batch.ProductID,
			BatchID:   &batch.ID,
		}
		if s.createDeduped(ctx, alert, batch.ProductID, &batch.ID) {
			created++
		}
	}
	return created, nil
}

// generateExpired delegates to the expired-batch sweep, which flags each
// batch and raises its EXPIRED alert
func (s *AlertService) generateExpired(ctx context.Context) (int, error) {
	return s.stock.SweepExpiredBatches(ctx)
}

// createDeduped creates an alert unless an unread one already covers the same
// subject. Two generators racing past the existence check land on the partial
// unique indexes, so a unique violation counts as already covered.
func (s *AlertService) createDeduped(ctx context.Context, alert *repository.Alert, productID string, batchID *string) bool {
	exists, err := s.alerts.ExistsUnread(ctx, alert.Type, productID, batchID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Str("type", alert.Type).Msg("failed to check existing alert")
		return false
	}
	if exists {
		return false
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		if database.IsUniqueViolation(err, "alerts_unread") {
			return false
		}
		s.logger.Error().Err(err).Str("product_id", productID).Str("type", alert.Type).Msg("failed to create alert")
		return false
	}

	s.publisher.PublishAlertGenerated(ctx, alert)
	return true
}

// List returns alerts matching the filter with the total count
func (s *AlertService) List(ctx context.Context, filter repository.AlertFilter) ([]*repository.Alert, int, error) {
	return s.alerts.List(ctx, filter)
}

// Get returns a single alert
func (s *AlertService) Get(ctx context.Context, id string) (*repository.Alert, error) {
	return s.alerts.GetByID(ctx, id)
}

// MarkRead marks an alert as read and optionally reassigns it in the same
// call. Unknown IDs are ignored.
func (s *AlertService) MarkRead(ctx context.Context, id string, assignTo *string) error {
	if err := s.alerts.MarkRead(ctx, id); err != nil {
		return err
	}
	if assignTo != nil {
		return s.alerts.Assign(ctx, id, *assignTo)
	}
	return nil
}

// MarkAllRead marks every unread alert as read
func (s *AlertService) MarkAllRead(ctx context.Context) (int, error) {
	return s.alerts.MarkAllRead(ctx)
}

// Assign assigns an alert to a user. Unknown alert IDs are ignored.
func (s *AlertService) Assign(ctx context.Context, id, userID string) error {
	return s.alerts.Assign(ctx, id, userID)
}

// CreateCustomRequest is a manually raised alert
type CreateCustomRequest struct {
	Message    string  `json:"message" validate:"required"`
	Priority   string  `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	ProductID  *string `json:"product_id,omitempty" validate:"omitempty,uuid"`
	BatchID    *string `json:"batch_id,omitempty" validate:"omitempty,uuid"`
	AssignedTo *string `json:"assigned_to,omitempty" validate:"omitempty,uuid"`
}

// CreateCustom inserts a manually raised alert. Type is always CUSTOM and the
// priority defaults to medium.
func (s *AlertService) CreateCustom(ctx context.Context, req *CreateCustomRequest) (*repository.Alert, error) {
	priority := req.Priority
	if priority == "" {
		priority = repository.PriorityMedium
	}

	alert := &repository.Alert{
		Type:       repository.AlertCustom,
		Priority:   priority,
		Message:    req.Message,
		ProductID:  req.ProductID,
		BatchID:    req.BatchID,
		AssignedTo: req.AssignedTo,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.publisher.PublishAlertGenerated(ctx, alert)
	return alert, nil
}

// Statistics returns aggregate alert counts
func (s *AlertService) Statistics(ctx context.Context) (*repository.AlertStatistics, error) {
	return s.alerts.Statistics(ctx)
}

// Dashboard summarizes the alerts needing attention
type Dashboard struct {
	UnreadCount int                 `json:"unread_count"`
	Critical    []*repository.Alert `json:"critical"`
	High        []*repository.Alert `json:"high"`
	Recent      []*repository.Alert `json:"recent"`
}

// GetDashboard returns unread counts plus the most urgent open alerts
func (s *AlertService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	unread, err := s.alerts.CountUnread(ctx)
	if err != nil {
		return nil, err
	}

	critical, err := s.alerts.ListUnreadByPriority(ctx, repository.PriorityCritical, 10)
	if err != nil {
		return nil, err
	}

	high, err := s.alerts.ListUnreadByPriority(ctx, repository.PriorityHigh, 10)
	if err != nil {
		return nil, err
	}

	recent, err := s.alerts.ListRecent(ctx, 10)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		UnreadCount: unread,
		Critical:    critical,
		High:        high,
		Recent:      recent,
	}, nil
}

// ExpiryPriority maps days until expiry to an alert priority. A week or less
// is critical, fifteen days or less is high, otherwise medium.
func ExpiryPriority(daysUntil int) string {
	switch {
	case daysUntil <= 7:
		return repository.PriorityCritical
	case daysUntil <= 15:
		return repository.PriorityHigh
	default:
		return repository.PriorityMedium
	}
}

// DaysUntil returns the whole days from today until the given date
func DaysUntil(date time.Time) int {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	target := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(target.Sub(today).Hours() / 24)
}
