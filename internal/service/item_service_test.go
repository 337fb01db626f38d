package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/repository"
	"github.com/qs3c/stockopt_go_server/internal/testutil"
)

func setupItemService(t *testing.T) (*ItemService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	service := NewItemService(
		repository.NewItemRepository(db),
		repository.NewSupplierRepository(db),
		repository.NewWarehouseRepository(db),
	)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return service, db, cleanup
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestItemService_Create(t *testing.T) {
	service, _, cleanup := setupItemService(t)
	defer cleanup()

	item, err := service.Create(&dto.CreateItemRequest{
		SKU:            "WIDGET-001",
		Name:           "Widget",
		Quantity:       20,
		UnitCost:       3.5,
		AvgDailyDemand: 4,
		LeadTimeDays:   7,
	})
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, "WIDGET-001", item.SKU)
	assert.True(t, item.IsActive)
	// 未指定时使用默认下单成本
	assert.Equal(t, 50.0, item.OrderCost)
}

func TestItemService_Create_WithOrderCost(t *testing.T) {
	service, _, cleanup := setupItemService(t)
	defer cleanup()

	item, err := service.Create(&dto.CreateItemRequest{
		SKU:       "WIDGET-002",
		Name:      "Widget",
		OrderCost: testutil.Float64(75),
	})
	require.NoError(t, err)
	assert.Equal(t, 75.0, item.OrderCost)
}

func TestItemService_Create_DuplicateSKU(t *testing.T) {
	service, db, cleanup := setupItemService(t)
	defer cleanup()

	testutil.TestItem(t, db, testutil.WithSKU("DUP-001"))

	_, err := service.Create(&dto.CreateItemRequest{
		SKU:  "DUP-001",
		Name: "Duplicate",
	})
	assert.ErrorIs(t, err, ErrSKUExists)
}

func TestItemService_Create_UnknownRefs(t *testing.T) {
	service, _, cleanup := setupItemService(t)
	defer cleanup()

	_, err := service.Create(&dto.CreateItemRequest{
		SKU:        "REF-001",
		Name:       "Ref",
		SupplierID: int64Ptr(99999),
	})
	assert.ErrorIs(t, err, ErrSupplierNotFound)

	_, err = service.Create(&dto.CreateItemRequest{
		SKU:         "REF-002",
		Name:        "Ref",
		WarehouseID: int64Ptr(99999),
	})
	assert.ErrorIs(t, err, ErrWarehouseNotFound)
}

func TestItemService_Create_WithRefs(t *testing.T) {
	service, db, cleanup := setupItemService(t)
	defer cleanup()

	supplier := testutil.TestSupplier(t, db)
	warehouse := testutil.TestWarehouse(t, db)

	item, err := service.Create(&dto.CreateItemRequest{
		SKU:         "REF-003",
		Name:        "Ref",
		SupplierID:  int64Ptr(supplier.ID),
		WarehouseID: int64Ptr(warehouse.ID),
	})
	require.NoError(t, err)
	require.NotNil(t, item.SupplierID)
	assert.Equal(t, supplier.ID, *item.SupplierID)
	require.NotNil(t, item.WarehouseID)
	assert.Equal(t, warehouse.ID, *item.WarehouseID)
}

func TestItemService_Get(t *testing.T) {
	service, db, cleanup := setupItemService(t)
	defer cleanup()

	created := testutil.TestItem(t, db)

	item, err := service.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.SKU, item.SKU)

	_, err = service.Get(99999)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestItemService_Update(t *testing.T) {
	service, db, cleanup := setupItemService(t)
	defer cleanup()

	created := testutil.TestItem(t, db)

	item, err := service.Update(created.ID, &dto.UpdateItemRequest{
		Name:           strPtr("Renamed"),
		UnitCost:       testutil.Float64(12.5),
		AvgDailyDemand: testutil.Float64(8),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", item.Name)
	assert.Equal(t, 12.5, item.UnitCost)
	assert.Equal(t, 8.0, item.AvgDailyDemand)
	// 未更新的字段保持原值
	assert.Equal(t, created.SKU, item.SKU)
	assert.Equal(t, created.Quantity, item.Quantity)
}

func TestItemService_Update_NotFound(t *testing.T) {
	service, _, cleanup := setupItemService(t)
	defer cleanup()

	_, err := service.Update(99999, &dto.UpdateItemRequest{
		Name: strPtr("Nothing"),
	})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestItemService_Deactivate(t *testing.T) {
	service, db, cleanup := setupItemService(t)
	defer cleanup()

	created := testutil.TestItem(t, db)

	err := service.Deactivate(created.ID)
	require.NoError(t, err)

	item, err := service.Get(created.ID)
	require.NoError(t, err)
	assert.False(t, item.IsActive)

	err = service.Deactivate(99999)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestItemService_List(t *testing.T) {
	service, db, cleanup := setupItemService(t)
	defer cleanup()

	testutil.TestItem(t, db, testutil.WithSKU("LIST-001"))
	testutil.TestItem(t, db, testutil.WithSKU("LIST-002"), testutil.WithInactive())
	low := testutil.TestItem(t, db, testutil.WithSKU("LIST-003"),
		testutil.WithQuantity(2), testutil.WithReorderPoint(10))

	rows, total, err := service.List(1, 10, "", false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	var lowRow *dto.ItemListItem
	for _, row := range rows {
		if row.ID == low.ID {
			lowRow = row
		}
	}
	require.NotNil(t, lowRow)
	assert.True(t, lowRow.LowStock)

	// 只看启用的
	_, total, err = service.List(1, 10, "", true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// 按 SKU 搜索
	rows, total, err = service.List(1, 10, "LIST-003", false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "LIST-003", rows[0].SKU)
}
