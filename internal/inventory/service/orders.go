package service

import (
	"context"
	"fmt"

	"github.com/maestranza/inventory-backend/internal/inventory/events"
	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/maestranza/inventory-backend/pkg/errors"
	"github.com/maestranza/inventory-backend/pkg/logger"
)

// validTransitions defines the purchase order lifecycle. Pending orders are
// placed or cancelled, placed orders are received or cancelled, and received
// or cancelled orders are final.
var validTransitions = map[string][]string{
	repository.POStatusPending: {repository.POStatusOrdered, repository.POStatusCancelled},
	repository.POStatusOrdered: {repository.POStatusReceived, repository.POStatusCancelled},
}

// PurchaseOrderService manages the purchase order lifecycle. Receiving an
// order books its lines into stock through the stock service, so received
// goods show up as IN movements.
type PurchaseOrderService struct {
	orders    *repository.PurchaseOrderRepository
	suppliers *repository.SupplierRepository
	stock     *StockService
	publisher *events.InventoryEventPublisher
	logger    *logger.Logger
}

// NewPurchaseOrderService creates a new purchase order service
func NewPurchaseOrderService(
	orders *repository.PurchaseOrderRepository,
	suppliers *repository.SupplierRepository,
	stock *StockService,
	publisher *events.InventoryEventPublisher,
	log *logger.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orders:    orders,
		suppliers: suppliers,
		stock:     stock,
		publisher: publisher,
		logger:    log,
	}
}

// Create creates a pending purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, po *repository.PurchaseOrder) error {
	if po.SupplierID == "" {
		return errors.BadRequest("supplier_id is required")
	}
	if len(po.Items) == 0 {
		return errors.BadRequest("order must have at least one item")
	}
	for _, item := range po.Items {
		if item.Quantity <= 0 {
			return errors.BadRequest("item quantity must be positive")
		}
	}

	if _, err := s.suppliers.GetByID(ctx, po.SupplierID); err != nil {
		return err
	}

	po.Status = repository.POStatusPending
	if err := s.orders.Create(ctx, po); err != nil {
		return err
	}

	s.publisher.PublishPurchaseOrderCreated(ctx, po)
	return nil
}

// Get gets a purchase order by ID
func (s *PurchaseOrderService) Get(ctx context.Context, id string) (*repository.PurchaseOrder, error) {
	return s.orders.GetByID(ctx, id)
}

// List lists purchase orders, optionally filtered by status
func (s *PurchaseOrderService) List(ctx context.Context, status *string) ([]*repository.PurchaseOrder, error) {
	return s.orders.List(ctx, status)
}

// UpdateStatus moves an order through its lifecycle. Moving to received also
// books every line into stock.
func (s *PurchaseOrderService) UpdateStatus(ctx context.Context, id, status, userID string) (*repository.PurchaseOrder, error) {
	po, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(po.Status, status) {
		return nil, errors.Conflict(fmt.Sprintf("cannot move order from %s to %s", po.Status, status))
	}

	if status == repository.POStatusReceived {
		if err := s.receiveItems(ctx, po, userID); err != nil {
			return nil, err
		}
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	po.Status = status

	if status == repository.POStatusReceived {
		s.publisher.PublishPurchaseOrderReceived(ctx, po, userID)
	}
	return po, nil
}

// receiveItems applies an IN movement per order line
func (s *PurchaseOrderService) receiveItems(ctx context.Context, po *repository.PurchaseOrder, userID string) error {
	var performedBy *string
	if userID != "" {
		performedBy = &userID
	}

	for _, item := range po.Items {
		_, err := s.stock.ApplyMovement(ctx, &ApplyMovementRequest{
			ProductID:   item.ProductID,
			Type:        repository.MovementIn,
			Quantity:    item.Quantity,
			Reason:      fmt.Sprintf("purchase order %s received", po.ID),
			PerformedBy: performedBy,
		})
		if err != nil {
			return fmt.Errorf("receive order %s: product %s: %w", po.ID, item.ProductID, err)
		}
	}
	return nil
}

// Delete removes a pending purchase order. Orders that have been placed stay
// in the history and can only be cancelled.
func (s *PurchaseOrderService) Delete(ctx context.Context, id string) error {
	po, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if po.Status != repository.POStatusPending {
		return errors.Conflict("only pending orders can be deleted")
	}
	return s.orders.Delete(ctx, id)
}

func transitionAllowed(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
