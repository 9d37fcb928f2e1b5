package events

import (
	"context"
	"time"

	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/maestranza/inventory-backend/pkg/logger"
	"github.com/maestranza/inventory-backend/pkg/messaging"
)

// InventoryEventPublisher publishes inventory-related events. A nil publisher
// is valid and drops every event, so the service runs without RabbitMQ.
type InventoryEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewInventoryEventPublisher creates a new inventory event publisher
func NewInventoryEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*InventoryEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "inventory-service", log)
	if err != nil {
		return nil, err
	}

	return &InventoryEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishMovementApplied publishes a movement applied event
func (p *InventoryEventPublisher) PublishMovementApplied(ctx context.Context, m *repository.Movement, productName string) {
	if p == nil {
		return
	}

	performedBy := ""
	if m.PerformedBy != nil {
		performedBy = *m.PerformedBy
	}
	projectID := ""
	if m.ProjectID != nil {
		projectID = *m.ProjectID
	}

	data := messaging.MovementAppliedEvent{
		MovementID:       m.ID,
		ProductID:        m.ProductID,
		ProductName:      productName,
		MovementType:     m.Type,
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		PerformedBy:      performedBy,
		Reason:           m.Reason,
		ProjectID:        projectID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventMovementApplied, data); err != nil {
		p.logger.Error().Err(err).Str("movement_id", m.ID).Msg("failed to publish movement applied event")
	}
}

// PublishBatchExpired publishes a batch expired event when the sweep zeroes a batch
func (p *InventoryEventPublisher) PublishBatchExpired(ctx context.Context, b *repository.ExpiringBatch) {
	if p == nil {
		return
	}

	var expiry time.Time
	if b.ExpiryDate != nil {
		expiry = *b.ExpiryDate
	}

	data := messaging.BatchExpiredEvent{
		ProductID:   b.ProductID,
		BatchID:     b.ID,
		ProductName: b.ProductName,
		LotNumber:   b.LotNumber,
		ExpiryDate:  expiry,
		Quantity:    b.Quantity,
	}

	if err := p.publisher.Publish(ctx, messaging.EventBatchExpired, data); err != nil {
		p.logger.Error().Err(err).Str("batch_id", b.ID).Msg("failed to publish batch expired event")
	}
}

// PublishAlertGenerated publishes an alert generated event
func (p *InventoryEventPublisher) PublishAlertGenerated(ctx context.Context, alert *repository.Alert) {
	if p == nil {
		return
	}

	productID := ""
	if alert.ProductID != nil {
		productID = *alert.ProductID
	}
	batchID := ""
	if alert.BatchID != nil {
		batchID = *alert.BatchID
	}

	data := messaging.AlertGeneratedEvent{
		AlertID:   alert.ID,
		AlertType: alert.Type,
		Priority:  alert.Priority,
		Message:   alert.Message,
		ProductID: productID,
		BatchID:   batchID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventAlertGenerated, data); err != nil {
		p.logger.Error().Err(err).Str("alert_id", alert.ID).Msg("failed to publish alert generated event")
	}
}

// PublishPurchaseOrderCreated publishes a purchase order created event
func (p *InventoryEventPublisher) PublishPurchaseOrderCreated(ctx context.Context, po *repository.PurchaseOrder) {
	if p == nil {
		return
	}

	createdBy := ""
	if po.CreatedBy != nil {
		createdBy = *po.CreatedBy
	}

	data := messaging.PurchaseOrderCreatedEvent{
		OrderID:    po.ID,
		SupplierID: po.SupplierID,
		ItemCount:  len(po.Items),
		CreatedBy:  createdBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventPurchaseOrderCreated, data); err != nil {
		p.logger.Error().Err(err).Str("order_id", po.ID).Msg("failed to publish purchase order created event")
	}
}

// PublishPurchaseOrderReceived publishes a purchase order received event
func (p *InventoryEventPublisher) PublishPurchaseOrderReceived(ctx context.Context, po *repository.PurchaseOrder, receivedBy string) {
	if p == nil {
		return
	}

	data := messaging.PurchaseOrderReceivedEvent{
		OrderID:    po.ID,
		SupplierID: po.SupplierID,
		ReceivedBy: receivedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventPurchaseOrderReceived, data); err != nil {
		p.logger.Error().Err(err).Str("order_id", po.ID).Msg("failed to publish purchase order received event")
	}
}
