package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	// Movement events
	EventMovementApplied = "inventory.movement.applied"

	// Stock events
	EventStockAdjusted = "inventory.stock.adjusted"
	EventBatchExpiring = "inventory.batch.expiring"
	EventBatchExpired  = "inventory.batch.expired"

	// Alert events
	EventAlertGenerated = "inventory.alert.generated"

	// Purchase order events
	EventPurchaseOrderCreated  = "inventory.purchase_order.created"
	EventPurchaseOrderReceived = "inventory.purchase_order.received"

	// User events
	EventUserCreated = "user.created"
)

// Exchange names
const (
	ExchangeInventoryEvents = "inventory.events"
	ExchangeUserEvents      = "user.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Movement Events

// MovementAppliedEvent is published when a stock movement is recorded
type MovementAppliedEvent struct {
	MovementID       string `json:"movement_id"`
	ProductID        string `json:"product_id"`
	ProductName      string `json:"product_name"`
	MovementType     string `json:"movement_type"`
	Quantity         int    `json:"quantity"`
	PreviousQuantity int    `json:"previous_quantity"`
	NewQuantity      int    `json:"new_quantity"`
	PerformedBy      string `json:"performed_by"`
	Reason           string `json:"reason,omitempty"`
	ProjectID        string `json:"project_id,omitempty"`
}

// StockAdjustedEvent is published when stock is set to an absolute level
type StockAdjustedEvent struct {
	ProductID   string `json:"product_id"`
	Adjustment  int    `json:"adjustment"`
	NewQuantity int    `json:"new_quantity"`
	PerformedBy string `json:"performed_by"`
	Reason      string `json:"reason"`
}

// Batch Events

// BatchExpiringEvent is published when a batch is nearing expiry
type BatchExpiringEvent struct {
	ProductID   string    `json:"product_id"`
	BatchID     string    `json:"batch_id"`
	ProductName string    `json:"product_name"`
	LotNumber   string    `json:"lot_number"`
	ExpiryDate  time.Time `json:"expiry_date"`
	DaysUntil   int       `json:"days_until"`
	Quantity    int       `json:"quantity"`
}

// BatchExpiredEvent is published when an expired batch is swept out of stock
type BatchExpiredEvent struct {
	ProductID   string    `json:"product_id"`
	BatchID     string    `json:"batch_id"`
	ProductName string    `json:"product_name"`
	LotNumber   string    `json:"lot_number"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Quantity    int       `json:"quantity"`
}

// Alert Events

// AlertGeneratedEvent is published when an alert is generated
type AlertGeneratedEvent struct {
	AlertID   string `json:"alert_id"`
	AlertType string `json:"alert_type"`
	Priority  string `json:"priority"`
	Message   string `json:"message"`
	ProductID string `json:"product_id,omitempty"`
	BatchID   string `json:"batch_id,omitempty"`
}

// Purchase Order Events

// PurchaseOrderCreatedEvent is published when a purchase order is created
type PurchaseOrderCreatedEvent struct {
	OrderID    string `json:"order_id"`
	SupplierID string `json:"supplier_id"`
	ItemCount  int    `json:"item_count"`
	CreatedBy  string `json:"created_by"`
}

// PurchaseOrderReceivedEvent is published when a purchase order is received
type PurchaseOrderReceivedEvent struct {
	OrderID    string `json:"order_id"`
	SupplierID string `json:"supplier_id"`
	ReceivedBy string `json:"received_by"`
}

// User Events

// UserCreatedEvent is published when a user account is created
type UserCreatedEvent struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
