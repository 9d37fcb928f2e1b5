package service

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/maestranza/inventory-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var suite *testutil.IntegrationSuite

func TestMain(m *testing.M) {
	flag.Parse()

	// Unit tests in this package run without the container
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	var err error
	suite, err = testutil.NewIntegrationSuite(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start test database: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	testutil.TerminateContainer(ctx)
	os.Exit(code)
}

func newIntegrationServices(t *testing.T) (*StockService, *AlertService, *PurchaseOrderService, *InventoryService) {
	t.Helper()

	products := repository.NewProductRepository(suite.DB)
	batches := repository.NewBatchRepository(suite.DB)
	movements := repository.NewMovementRepository(suite.DB)
	alerts := repository.NewAlertRepository(suite.DB)
	kits := repository.NewKitRepository(suite.DB)
	suppliers := repository.NewSupplierRepository(suite.DB)
	categories := repository.NewCategoryRepository(suite.DB)
	projects := repository.NewProjectRepository(suite.DB)
	orders := repository.NewPurchaseOrderRepository(suite.DB)
	sysConfig := repository.NewSystemConfigRepository(suite.DB)

	stock := NewStockService(suite.DB, products, batches, movements, alerts, kits, sysConfig, nil, suite.Logger)
	alertSvc := NewAlertService(products, batches, alerts, sysConfig, stock, nil, suite.Logger)
	orderSvc := NewPurchaseOrderService(orders, suppliers, stock, nil, suite.Logger)
	inventory := NewInventoryService(products, batches, categories, suppliers, projects, kits, suite.Logger)

	return stock, alertSvc, orderSvc, inventory
}

func seedProduct(t *testing.T, quantity, minStock int) *repository.Product {
	t.Helper()

	fixture := suite.Fixtures.Product(testutil.WithQuantity(quantity), testutil.WithMinStock(minStock))
	product := &repository.Product{
		ID:       fixture.ID,
		SKU:      fixture.SKU,
		Name:     fixture.Name,
		Location: fixture.Location,
		Unit:     fixture.Unit,
		Quantity: fixture.Quantity,
		MinStock: fixture.MinStock,

		ExpiryControl: true,
	}
	require.NoError(t, repository.NewProductRepository(suite.DB).Create(context.Background(), product))
	return product
}

func seedBatch(t *testing.T, productID string, quantity, expiresInDays int) *repository.Batch {
	t.Helper()

	expiry := time.Now().AddDate(0, 0, expiresInDays)
	batch := &repository.Batch{
		ProductID:  productID,
		LotNumber:  fmt.Sprintf("LOT-%d", time.Now().UnixNano()),
		Quantity:   quantity,
		ExpiryDate: &expiry,
	}
	require.NoError(t, repository.NewBatchRepository(suite.DB).Create(context.Background(), batch))
	return batch
}

func TestIntegration_MovementAtomicity(t *testing.T) {
	testutil.SkipIfShort(t)
	suite.Reset(t)
	ctx := context.Background()

	stock, _, _, _ := newIntegrationServices(t)
	product := seedProduct(t, 10, 2)

	// A successful OUT updates stock and leaves a history row
	movement, err := stock.ApplyMovement(ctx, &ApplyMovementRequest{
		ProductID: product.ID,
		Type:      repository.MovementOut,
		Quantity:  4,
		Reason:    "mantencion prensa",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, movement.NewQuantity)

	reloaded, err := repository.NewProductRepository(suite.DB).GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, reloaded.Quantity)

	// An OUT beyond stock fails and changes nothing
	_, err = stock.ApplyMovement(ctx, &ApplyMovementRequest{
		ProductID: product.ID,
		Type:      repository.MovementOut,
		Quantity:  100,
	})
	require.Error(t, err)

	reloaded, err = repository.NewProductRepository(suite.DB).GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, reloaded.Quantity)

	movements, total, err := repository.NewMovementRepository(suite.DB).List(ctx, repository.MovementFilter{ProductID: &product.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, movements, 1)
	assert.Equal(t, repository.MovementOut, movements[0].Type)
}

func TestIntegration_AdjustmentSetsAbsoluteLevel(t *testing.T) {
	testutil.SkipIfShort(t)
	suite.Reset(t)
	ctx := context.Background()

	stock, _, _, _ := newIntegrationServices(t)
	product := seedProduct(t, 40, 5)

	movement, err := stock.ApplyMovement(ctx, &ApplyMovementRequest{
		ProductID: product.ID,
		Type:      repository.MovementAdjustment,
		Quantity:  25,
		Reason:    "conteo fisico",
	})
	require.NoError(t, err)
	assert.Equal(t, 15, movement.Quantity)
	assert.Equal(t, 25, movement.NewQuantity)

	reloaded, err := repository.NewProductRepository(suite.DB).GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, reloaded.Quantity)
}

func TestIntegration_AlertDedup(t *testing.T) {
	testutil.SkipIfShort(t)
	suite.Reset(t)
	ctx := context.Background()

	_, alertSvc, _, _ := newIntegrationServices(t)
	product := seedProduct(t, 3, 10)

	// Two passes produce a single unread alert for the product
	first, err := alertSvc.GenerateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.LowStock)

	second, err := alertSvc.GenerateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.LowStock)

	unreadOnly := false
	alerts, total, err := repository.NewAlertRepository(suite.DB).List(ctx, repository.AlertFilter{IsRead: &unreadOnly})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, alerts, 1)
	assert.Equal(t, repository.AlertLowStock, alerts[0].Type)
	assert.Equal(t, product.ID, *alerts[0].ProductID)

	// Reading the alert reopens the slot for the next pass
	require.NoError(t, alertSvc.MarkRead(ctx, alerts[0].ID, nil))

	third, err := alertSvc.GenerateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, third.LowStock)
}

func TestIntegration_AlertPriorities(t *testing.T) {
	testutil.SkipIfShort(t)
	suite.Reset(t)
	ctx := context.Background()

	_, alertSvc, _, _ := newIntegrationServices(t)

	outOfStock := seedProduct(t, 0, 10)
	halfMin := seedProduct(t, 5, 10)
	justBelow := seedProduct(t, 9, 10)

	_, err := alertSvc.GenerateAll(ctx)
	require.NoError(t, err)

	alerts, _, err := repository.NewAlertRepository(suite.DB).List(ctx, repository.AlertFilter{})
	require.NoError(t, err)
	require.Len(t, alerts, 3)

	byProduct := map[string]string{}
	for _, a := range alerts {
		byProduct[*a.ProductID] = a.Priority
	}
	assert.Equal(t, repository.PriorityCritical, byProduct[outOfStock.ID])
	assert.Equal(t, repository.PriorityHigh, byProduct[halfMin.ID])
	assert.Equal(t, repository.PriorityMedium, byProduct[justBelow.ID])
}

func TestIntegration_ExpiryAlerts(t *testing.T) {
	testutil.SkipIfShort(t)
	suite.Reset(t)
	ctx := context.Background()

	_, alertSvc, _, _ := newIntegrationServices(t)
	product := seedProduct(t, 100, 5)

	soon := seedBatch(t, product.ID, 10, 5)
	later := seedBatch(t, product.ID, 10, 12)
	expired := seedBatch(t, product.ID, 10, -2)

	result, err := alertSvc.GenerateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Expiring)
	assert.Equal(t, 1, result.Expired)

	alerts, _, err := repository.NewAlertRepository(suite.DB).List(ctx, repository.AlertFilter{})
	require.NoError(t, err)

	byBatch := map[string]*repository.Alert{}
	for _, a := range alerts {
		if a.BatchID != nil {
			byBatch[*a.BatchID] = a
		}
	}
	require.Contains(t, byBatch, soon.ID)
	assert.Equal(t, repository.AlertExpiringSoon, byBatch[soon.ID].Type)
	assert.Equal(t, repository.PriorityCritical, byBatch[soon.ID].Priority)

	require.Contains(t, byBatch, later.ID)
	assert.Equal(t, repository.PriorityHigh, byBatch[later.ID].Priority)

	require.Contains(t, byBatch, expired.ID)
	assert.Equal(t, repository.AlertExpired, byBatch[expired.ID].Type)
	assert.Equal(t, repository.PriorityCritical, byBatch[expired.ID].Priority)
}

func TestIntegration_SweepExpiredBatches(t *testing.T) {
	testutil.SkipIfShort(t)
	suite.Reset(t)
	ctx := context.Background()

	stock, _, _, _ := newIntegrationServices(t)
	product := seedProduct(t, 10, 2)
	batch := seedBatch(t, product.ID, 4, -3)

	swept, err := stock.SweepExpiredBatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	// The sweep flags the batch but never touches stock levels
	reloaded, err := repository.NewProductRepository(suite.DB).GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, reloaded.Quantity)

	sweptBatch, err := repository.NewBatchRepository(suite.DB).GetByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, sweptBatch.IsExpired)
	assert.Equal(t, 4, sweptBatch.Quantity)

	alerts, _, err := repository.NewAlertRepository(suite.DB).List(ctx, repository.AlertFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, repository.AlertExpired, alerts[0].Type)
	assert.Equal(t, repository.PriorityCritical, alerts[0].Priority)

	// A second sweep finds nothing left to flag
	swept, err = stock.SweepExpiredBatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, swept)
}

func TestIntegration_KitAvailability(t *testing.T) {
	testutil.SkipIfShort(t)
	suite.Reset(t)
	ctx := context.Background()

	stock, _, _, inventory := newIntegrationServices(t)
	bolts := seedProduct(t, 10, 2)
	plates := seedProduct(t, 4, 1)

	kit := &repository.Kit{
		Name: "Kit soporte estructural",
		Components: []repository.KitComponent{
			{ProductID: bolts.ID, Quantity: 2},
			{ProductID: plates.ID, Quantity: 3},
		},
	}
	require.NoError(t, inventory.CreateKit(ctx, kit))

	availability, err := stock.CheckKitAvailability(ctx, kit.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, availability.AvailableKits)
}

func TestIntegration_PurchaseOrderLifecycle(t *testing.T) {
	testutil.SkipIfShort(t)
	suite.Reset(t)
	ctx := context.Background()

	_, _, orderSvc, inventory := newIntegrationServices(t)
	product := seedProduct(t, 5, 2)

	fixture := suite.Fixtures.Supplier()
	supplier := &repository.Supplier{ID: fixture.ID, Name: fixture.Name, RUT: fixture.RUT}
	require.NoError(t, inventory.CreateSupplier(ctx, supplier))

	order := &repository.PurchaseOrder{
		SupplierID: supplier.ID,
		Items: []repository.PurchaseOrderItem{
			{ProductID: product.ID, Quantity: 20, UnitPrice: 990},
		},
	}
	require.NoError(t, orderSvc.Create(ctx, order))
	assert.Equal(t, repository.POStatusPending, order.Status)

	// Pending cannot jump straight to received
	_, err := orderSvc.UpdateStatus(ctx, order.ID, repository.POStatusReceived, "")
	require.Error(t, err)

	_, err = orderSvc.UpdateStatus(ctx, order.ID, repository.POStatusOrdered, "")
	require.NoError(t, err)

	// Receiving books the lines into stock
	received, err := orderSvc.UpdateStatus(ctx, order.ID, repository.POStatusReceived, "")
	require.NoError(t, err)
	assert.Equal(t, repository.POStatusReceived, received.Status)

	reloaded, err := repository.NewProductRepository(suite.DB).GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, reloaded.Quantity)
}

func TestIntegration_UniqueConstraints(t *testing.T) {
	testutil.SkipIfShort(t)
	suite.Reset(t)
	ctx := context.Background()

	_, _, _, inventory := newIntegrationServices(t)
	product := seedProduct(t, 5, 2)

	dup := &repository.Product{SKU: product.SKU, Name: "Duplicado"}
	err := inventory.CreateProduct(ctx, dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SKU")
}
