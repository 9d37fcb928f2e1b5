package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/maestranza/inventory-backend/pkg/errors"
	"github.com/maestranza/inventory-backend/pkg/logger"
	"github.com/maestranza/inventory-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStockService(t *testing.T) (*StockService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("test", "test")

	svc := NewStockService(
		mockDB.DB,
		repository.NewProductRepository(mockDB.DB),
		repository.NewBatchRepository(mockDB.DB),
		repository.NewMovementRepository(mockDB.DB),
		repository.NewAlertRepository(mockDB.DB),
		repository.NewKitRepository(mockDB.DB),
		repository.NewSystemConfigRepository(mockDB.DB),
		nil,
		log,
	)
	return svc, mockDB
}

func productRow(id string, quantity, minStock int) *sqlmock.Rows {
	now := time.Now()
	return testutil.MockRows(
		"id", "sku", "name", "description", "category_id", "supplier_id",
		"location", "unit", "unit_price", "brand", "quantity", "min_stock", "max_stock",
		"is_active", "expiry_control", "created_at", "updated_at",
	).AddRow(id, "SKU-1", "Soldadura 6011", "", nil, nil, "B-12", "kg", 4500.0, "Indura",
		quantity, minStock, nil, true, true, now, now)
}

func TestApplyMovement_Out(t *testing.T) {
	svc, mockDB := newMockStockService(t)
	defer mockDB.Close()

	const productID = "4f5b2e31-90fd-4f83-a9f9-6a41a96a4c1e"

	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("FOR UPDATE").WillReturnRows(productRow(productID, 50, 10))
	mockDB.Mock.ExpectQuery("INSERT INTO movements").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mockDB.Mock.ExpectExec("UPDATE products SET quantity").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	// Post-movement alert check: stock stays above minimum, nothing created
	mockDB.Mock.ExpectQuery("SELECT \\* FROM products WHERE id").
		WillReturnRows(productRow(productID, 30, 10))

	movement, err := svc.ApplyMovement(context.Background(), &ApplyMovementRequest{
		ProductID: productID,
		Type:      repository.MovementOut,
		Quantity:  20,
		Reason:    "obra norte",
	})
	require.NoError(t, err)

	assert.Equal(t, 50, movement.PreviousQuantity)
	assert.Equal(t, 30, movement.NewQuantity)
	assert.Equal(t, 20, movement.Quantity)
	mockDB.ExpectationsWereMet(t)
}

func TestApplyMovement_OutInsufficientStock(t *testing.T) {
	svc, mockDB := newMockStockService(t)
	defer mockDB.Close()

	const productID = "4f5b2e31-90fd-4f83-a9f9-6a41a96a4c1e"

	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("FOR UPDATE").WillReturnRows(productRow(productID, 5, 10))
	mockDB.ExpectRollback()

	_, err := svc.ApplyMovement(context.Background(), &ApplyMovementRequest{
		ProductID: productID,
		Type:      repository.MovementOut,
		Quantity:  10,
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "INSUFFICIENT_STOCK", appErr.Code)
	assert.Equal(t, 409, appErr.StatusCode)
	mockDB.ExpectationsWereMet(t)
}

func TestApplyMovement_AdjustmentRecordsAbsoluteDelta(t *testing.T) {
	svc, mockDB := newMockStockService(t)
	defer mockDB.Close()

	const productID = "4f5b2e31-90fd-4f83-a9f9-6a41a96a4c1e"

	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("FOR UPDATE").WillReturnRows(productRow(productID, 40, 10))
	mockDB.Mock.ExpectQuery("INSERT INTO movements").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mockDB.Mock.ExpectExec("UPDATE products SET quantity").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	mockDB.Mock.ExpectQuery("SELECT \\* FROM products WHERE id").
		WillReturnRows(productRow(productID, 25, 10))

	// Target of 25 from a level of 40 records a movement of 15
	movement, err := svc.ApplyMovement(context.Background(), &ApplyMovementRequest{
		ProductID: productID,
		Type:      repository.MovementAdjustment,
		Quantity:  25,
		Reason:    "conteo fisico",
	})
	require.NoError(t, err)

	assert.Equal(t, 15, movement.Quantity)
	assert.Equal(t, 40, movement.PreviousQuantity)
	assert.Equal(t, 25, movement.NewQuantity)
	mockDB.ExpectationsWereMet(t)
}

func TestApplyMovement_AdjustmentNoChangeRejected(t *testing.T) {
	svc, mockDB := newMockStockService(t)
	defer mockDB.Close()

	const productID = "4f5b2e31-90fd-4f83-a9f9-6a41a96a4c1e"

	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("FOR UPDATE").WillReturnRows(productRow(productID, 25, 10))
	mockDB.ExpectRollback()

	_, err := svc.ApplyMovement(context.Background(), &ApplyMovementRequest{
		ProductID: productID,
		Type:      repository.MovementAdjustment,
		Quantity:  25,
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "BAD_REQUEST", appErr.Code)
	mockDB.ExpectationsWereMet(t)
}

func TestApplyMovement_ZeroQuantityRejected(t *testing.T) {
	svc, mockDB := newMockStockService(t)
	defer mockDB.Close()

	_, err := svc.ApplyMovement(context.Background(), &ApplyMovementRequest{
		ProductID: "4f5b2e31-90fd-4f83-a9f9-6a41a96a4c1e",
		Type:      repository.MovementIn,
		Quantity:  0,
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "BAD_REQUEST", appErr.Code)
}

func TestApplyMovement_LowStockTriggersAlert(t *testing.T) {
	svc, mockDB := newMockStockService(t)
	defer mockDB.Close()

	const productID = "4f5b2e31-90fd-4f83-a9f9-6a41a96a4c1e"

	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("FOR UPDATE").WillReturnRows(productRow(productID, 12, 10))
	mockDB.Mock.ExpectQuery("INSERT INTO movements").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mockDB.Mock.ExpectExec("UPDATE products SET quantity").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	// Stock dropped to 8, below the minimum of 10: no unread alert yet,
	// so one gets created.
	mockDB.Mock.ExpectQuery("SELECT \\* FROM products WHERE id").
		WillReturnRows(productRow(productID, 8, 10))
	mockDB.Mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	mockDB.Mock.ExpectQuery("INSERT INTO alerts").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	_, err := svc.ApplyMovement(context.Background(), &ApplyMovementRequest{
		ProductID: productID,
		Type:      repository.MovementOut,
		Quantity:  4,
	})
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}
