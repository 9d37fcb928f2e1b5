package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/maestranza/inventory-backend/internal/inventory/events"
	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/maestranza/inventory-backend/pkg/database"
	"github.com/maestranza/inventory-backend/pkg/errors"
	"github.com/maestranza/inventory-backend/pkg/logger"
)

const consumptionWindowDays = 30

// StockService applies stock movements and evaluates stock rules
type StockService struct {
	db        *database.DB
	products  *repository.ProductRepository
	batches   *repository.BatchRepository
	movements *repository.MovementRepository
	alerts    *repository.AlertRepository
	kits      *repository.KitRepository
	sysConfig *repository.SystemConfigRepository
	publisher *events.InventoryEventPublisher
	logger    *logger.Logger
}

// NewStockService creates a new stock service
func NewStockService(
	db *database.DB,
	products *repository.ProductRepository,
	batches *repository.BatchRepository,
	movements *repository.MovementRepository,
	alerts *repository.AlertRepository,
	kits *repository.KitRepository,
	sysConfig *repository.SystemConfigRepository,
	publisher *events.InventoryEventPublisher,
	log *logger.Logger,
) *StockService {
	return &StockService{
		db:        db,
		products:  products,
		batches:   batches,
		movements: movements,
		alerts:    alerts,
		kits:      kits,
		sysConfig: sysConfig,
		publisher: publisher,
		logger:    log,
	}
}

// ApplyMovementRequest describes a stock change to apply.
// For IN and OUT, Quantity is the amount moved. For ADJUSTMENT, Quantity is
// the target stock level and the recorded movement carries the absolute
// difference from the current level.
type ApplyMovementRequest struct {
	ProductID       string  `json:"product_id" validate:"required,uuid"`
	BatchID         *string `json:"batch_id,omitempty" validate:"omitempty,uuid"`
	Type            string  `json:"type" validate:"required,oneof=IN OUT ADJUSTMENT"`
	Quantity        int     `json:"quantity" validate:"gte=0"`
	Reason          string  `json:"reason"`
	ReferenceNumber string  `json:"reference_number"`
	ProjectID       *string `json:"project_id,omitempty" validate:"omitempty,uuid"`
	PerformedBy     *string `json:"-"`
}

// ApplyMovement atomically records a movement and updates the product's stock
// level. The product row is locked for the duration of the transaction, so
// concurrent movements against the same product serialize and an OUT can never
// push stock below zero.
func (s *StockService) ApplyMovement(ctx context.Context, req *ApplyMovementRequest) (*repository.Movement, error) {
	if req.Type != repository.MovementAdjustment && req.Quantity <= 0 {
		return nil, errors.BadRequest("quantity must be positive")
	}

	var movement *repository.Movement
	var productName string

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		product, err := s.products.GetForUpdate(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}
		productName = product.Name

		previous := product.Quantity
		var next, recorded int

		switch req.Type {
		case repository.MovementIn:
			next = previous + req.Quantity
			recorded = req.Quantity
		case repository.MovementOut:
			if req.Quantity > previous {
				return errors.InsufficientStock(product.Name, req.Quantity, previous)
			}
			next = previous - req.Quantity
			recorded = req.Quantity
		case repository.MovementAdjustment:
			if req.Quantity < 0 {
				return errors.BadRequest("target quantity cannot be negative")
			}
			next = req.Quantity
			delta := next - previous
			if delta < 0 {
				delta = -delta
			}
			if delta == 0 {
				return errors.BadRequest("adjustment does not change the stock level")
			}
			recorded = delta
		default:
			return errors.BadRequest("invalid movement type")
		}

		movement = &repository.Movement{
			ProductID:        product.ID,
			BatchID:          req.BatchID,
			Type:             req.Type,
			Quantity:         recorded,
			PreviousQuantity: previous,
			NewQuantity:      next,
			Reason:           req.Reason,
			ReferenceNumber:  req.ReferenceNumber,
			ProjectID:        req.ProjectID,
			PerformedBy:      req.PerformedBy,
		}
		if err := s.movements.CreateTx(ctx, tx, movement); err != nil {
			return err
		}

		return s.products.SetQuantity(ctx, tx, product.ID, next)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishMovementApplied(ctx, movement, productName)

	// The movement may have dropped the product to or below its minimum.
	if err := s.checkLowStockAlert(ctx, movement.ProductID); err != nil {
		s.logger.Error().Err(err).Str("product_id", movement.ProductID).Msg("post-movement alert check failed")
	}

	return movement, nil
}

// checkLowStockAlert creates a LOW_STOCK alert for the product if its stock is
// at or below the minimum and no unread alert already covers it.
func (s *StockService) checkLowStockAlert(ctx context.Context, productID string) error {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.Quantity > product.MinStock {
		return nil
	}

	exists, err := s.alerts.ExistsUnread(ctx, repository.AlertLowStock, product.ID, nil)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	alert := &repository.Alert{
		Type:      repository.AlertLowStock,
		Priority:  repository.PriorityHigh,
		Message:   fmt.Sprintf("%s (%s) stock is at %d, minimum is %d", product.Name, product.SKU, product.Quantity, product.MinStock),
		ProductID: &product.ID,
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		if database.IsUniqueViolation(err, "alerts_unread") {
			return nil
		}
		return err
	}

	s.publisher.PublishAlertGenerated(ctx, alert)
	return nil
}

// LowStockCandidate pairs a product with its recent consumption rate, so
// purchasing can see both where stock already breached the minimum and where
// it is projected to.
type LowStockCandidate struct {
	Product           *repository.Product `json:"product"`
	DailyConsumption  float64             `json:"daily_consumption"`
	ProjectedQuantity float64             `json:"projected_quantity"`
	BelowMinimum      bool                `json:"below_minimum"`
}

// LowStockCandidates returns products at or below their minimum, plus products
// whose consumption over the last 30 days projects them to breach the minimum
// within the configured threshold window. The quantity check is authoritative;
// the projection is advisory.
func (s *StockService) LowStockCandidates(ctx context.Context) ([]*LowStockCandidate, error) {
	thresholdDays, err := s.sysConfig.GetInt(ctx, repository.ConfigLowStockThresholdDays, 7)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read low stock threshold, using default")
	}

	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -consumptionWindowDays)
	candidates := []*LowStockCandidate{}

	for _, product := range products {
		totalOut, err := s.movements.TotalOutSince(ctx, product.ID, since)
		if err != nil {
			s.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to aggregate consumption")
			continue
		}

		dailyRate := float64(totalOut) / float64(consumptionWindowDays)
		projected := float64(product.Quantity) - dailyRate*float64(thresholdDays)
		belowMin := product.Quantity <= product.MinStock

		// Consumption-based signal: stock will not cover the threshold
		// window at the recent rate. A product with no recorded
		// consumption never trips this, only the minimum-stock rule.
		runsOut := float64(product.Quantity) < dailyRate*float64(thresholdDays)
		if !belowMin && !runsOut {
			continue
		}

		candidates = append(candidates, &LowStockCandidate{
			Product:           product,
			DailyConsumption:  dailyRate,
			ProjectedQuantity: projected,
			BelowMinimum:      belowMin,
		})
	}

	return candidates, nil
}

// ExpiringBatches returns batches with stock expiring within the configured
// warning window.
func (s *StockService) ExpiringBatches(ctx context.Context) ([]*repository.ExpiringBatch, error) {
	warningDays, err := s.sysConfig.GetInt(ctx, repository.ConfigExpiryWarningDays, 30)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read expiry warning window, using default")
	}
	return s.batches.ListExpiringWithin(ctx, warningDays)
}

// ExpiredBatches returns batches past their expiry date that still hold
// stock, whether or not the sweep has flagged them yet
func (s *StockService) ExpiredBatches(ctx context.Context) ([]*repository.ExpiringBatch, error) {
	return s.batches.ListExpiredStock(ctx)
}

// SweepExpiredBatches flags every batch past its expiry date that still holds
// stock and raises an EXPIRED alert for it. The flag is one-way and flagged
// batches drop out of the expired query, so repeated sweeps are no-ops.
func (s *StockService) SweepExpiredBatches(ctx context.Context) (int, error) {
	expired, err := s.batches.ListExpired(ctx)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, batch := range expired {
		flipped, err := s.batches.MarkExpired(ctx, batch.ID)
		if err != nil {
			s.logger.Error().Err(err).Str("batch_id", batch.ID).Msg("failed to flag expired batch")
			continue
		}
		if !flipped {
			continue
		}
		swept++

		if err := s.expiredAlert(ctx, batch); err != nil {
			s.logger.Error().Err(err).Str("batch_id", batch.ID).Msg("failed to create expired alert")
		}
		s.publisher.PublishBatchExpired(ctx, batch)
	}

	return swept, nil
}

func (s *StockService) expiredAlert(ctx context.Context, batch *repository.ExpiringBatch) error {
	exists, err := s.alerts.ExistsUnread(ctx, repository.AlertExpired, batch.ProductID, &batch.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	alert := &repository.Alert{
		Type:      repository.AlertExpired,
		Priority:  repository.PriorityCritical,
		Message:   fmt.Sprintf("batch %s of %s expired on %s with %d units left", batch.LotNumber, batch.ProductName, batch.ExpiryDate.Format("2006-01-02"), batch.Quantity),
		ProductID: &batch.ProductID,
		BatchID:   &batch.ID,
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		if database.IsUniqueViolation(err, "alerts_unread") {
			return nil
		}
		return err
	}

	s.publisher.PublishAlertGenerated(ctx, alert)
	return nil
}

// ComponentAvailability is one line of a kit feasibility report
type ComponentAvailability struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	Required      int    `json:"required"`
	Available     int    `json:"available"`
	PossibleUnits int    `json:"possible_units"`
}

// KitAvailability reports how many complete kits can be assembled from stock,
// with the per-component breakdown that limits it.
type KitAvailability struct {
	Kit           *repository.Kit         `json:"kit"`
	Components    []ComponentAvailability `json:"components"`
	KitAvailable  bool                    `json:"kit_available"`
	AvailableKits int                     `json:"available_kits"`
}

// CheckKitAvailability returns how many complete kits current stock supports.
// The aggregate is the minimum across components of available divided by
// required; a component requiring zero units can never be satisfied, and a
// kit with no components supports zero.
func (s *StockService) CheckKitAvailability(ctx context.Context, kitID string) (*KitAvailability, error) {
	kit, err := s.kits.GetByID(ctx, kitID)
	if err != nil {
		return nil, err
	}

	breakdown := make([]ComponentAvailability, 0, len(kit.Components))
	for _, c := range kit.Components {
		possible := 0
		if c.Quantity > 0 {
			possible = c.Available / c.Quantity
		}
		breakdown = append(breakdown, ComponentAvailability{
			ProductID:     c.ProductID,
			ProductName:   c.ProductName,
			Required:      c.Quantity,
			Available:     c.Available,
			PossibleUnits: possible,
		})
	}

	maxKits := AvailableKitCount(kit.Components)
	return &KitAvailability{
		Kit:           kit,
		Components:    breakdown,
		KitAvailable:  maxKits > 0,
		AvailableKits: maxKits,
	}, nil
}

// AvailableKitCount computes the number of complete kits the component stock
// levels support.
func AvailableKitCount(components []repository.KitComponent) int {
	if len(components) == 0 {
		return 0
	}

	min := -1
	for _, c := range components {
		n := 0
		if c.Quantity > 0 {
			n = c.Available / c.Quantity
		}
		if min < 0 || n < min {
			min = n
		}
	}
	return min
}

// LowStockPriority maps a stock level to an alert priority. Zero stock is
// critical, half the minimum or less is high, otherwise medium.
func LowStockPriority(quantity, minStock int) string {
	switch {
	case quantity == 0:
		return repository.PriorityCritical
	case float64(quantity) <= float64(minStock)*0.5:
		return repository.PriorityHigh
	default:
		return repository.PriorityMedium
	}
}
