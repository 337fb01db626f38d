package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qs3c/stockopt_go_server/internal/database"
	"github.com/qs3c/stockopt_go_server/internal/model"
	"github.com/qs3c/stockopt_go_server/internal/testutil"
)

// setupCatalog 按给定 DDL 建 items 表，模拟线上结构不一致的实例
func setupCatalog(t *testing.T, schema string, inserts ...string) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if schema != "" {
		require.NoError(t, db.Exec(schema).Error)
	}
	for _, ins := range inserts {
		require.NoError(t, db.Exec(ins).Error)
	}

	conn := database.NewConn(db, func() (*gorm.DB, error) { return db, nil }, 2)
	return NewStore(conn)
}

func TestStore_Snapshots_FullSchema(t *testing.T) {
	store := setupCatalog(t,
		`CREATE TABLE items (
			id INTEGER PRIMARY KEY,
			avg_daily_demand REAL,
			lead_time_days REAL,
			unit_cost REAL,
			safety_stock REAL,
			order_cost REAL,
			is_active INTEGER
		)`,
		`INSERT INTO items VALUES (1, 4.5, 10, 2.5, 12, 60, 1)`,
		`INSERT INTO items VALUES (2, 2.0, 7, 1.0, 5, 45, 1)`,
		`INSERT INTO items VALUES (3, 9.0, 3, 8.0, 1, 80, 0)`,
	)

	snaps, err := store.Snapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 2) // 停用的第 3 行被过滤

	assert.EqualValues(t, 1, snaps[0].ItemID)
	assert.Equal(t, 4.5, snaps[0].AvgDailyDemand)
	assert.Equal(t, 10.0, snaps[0].LeadTimeDays)
	assert.Equal(t, 2.5, snaps[0].UnitCost)
	require.NotNil(t, snaps[0].SafetyStock)
	assert.Equal(t, 12.0, *snaps[0].SafetyStock)
	assert.Equal(t, 60.0, snaps[0].OrderCost)
}

func TestStore_Snapshots_MissingSafetyStockColumn(t *testing.T) {
	store := setupCatalog(t,
		`CREATE TABLE items (
			id INTEGER PRIMARY KEY,
			avg_daily_demand REAL,
			lead_time_days REAL,
			unit_cost REAL,
			order_cost REAL
		)`,
		`INSERT INTO items VALUES (1, 4.5, 10, 2.5, 60)`,
		`INSERT INTO items VALUES (2, 2.0, 7, 1.0, 45)`,
	)

	snaps, err := store.Snapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	// 列不存在时字段整个省略，而不是补 0
	for _, snap := range snaps {
		assert.Nil(t, snap.SafetyStock)
	}
}

func TestStore_Snapshots_MissingOrderCostColumn(t *testing.T) {
	store := setupCatalog(t,
		`CREATE TABLE items (id INTEGER PRIMARY KEY, avg_daily_demand REAL)`,
		`INSERT INTO items VALUES (1, 4.5)`,
	)

	snaps, err := store.Snapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 50.0, snaps[0].OrderCost)
	assert.Equal(t, 0.0, snaps[0].LeadTimeDays)
	assert.Equal(t, 0.0, snaps[0].UnitCost)
}

func TestStore_Snapshots_MissingActiveColumnTakesAll(t *testing.T) {
	store := setupCatalog(t,
		`CREATE TABLE items (id INTEGER PRIMARY KEY, avg_daily_demand REAL)`,
		`INSERT INTO items VALUES (1, 1)`,
		`INSERT INTO items VALUES (2, 2)`,
		`INSERT INTO items VALUES (3, 3)`,
	)

	snaps, err := store.Snapshots()
	require.NoError(t, err)
	assert.Len(t, snaps, 3)
}

func TestStore_Snapshots_NullValuesGetDefaults(t *testing.T) {
	store := setupCatalog(t,
		`CREATE TABLE items (
			id INTEGER PRIMARY KEY,
			avg_daily_demand REAL,
			safety_stock REAL,
			order_cost REAL
		)`,
		`INSERT INTO items VALUES (1, NULL, NULL, NULL)`,
	)

	snaps, err := store.Snapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	assert.Equal(t, 0.0, snaps[0].AvgDailyDemand)
	assert.Equal(t, 50.0, snaps[0].OrderCost)
	// 列存在但值为 NULL 时补缺省值 0，字段不省略
	require.NotNil(t, snaps[0].SafetyStock)
	assert.Equal(t, 0.0, *snaps[0].SafetyStock)
}

func TestStore_Snapshots_TextNumbersCoerced(t *testing.T) {
	store := setupCatalog(t,
		`CREATE TABLE items (id INTEGER PRIMARY KEY, avg_daily_demand TEXT, order_cost TEXT)`,
		`INSERT INTO items VALUES (1, '4.25', 'garbage')`,
	)

	snaps, err := store.Snapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 4.25, snaps[0].AvgDailyDemand)
	assert.Equal(t, 50.0, snaps[0].OrderCost) // 解析失败回落到缺省值
}

func TestStore_Snapshots_MissingIDColumn(t *testing.T) {
	store := setupCatalog(t,
		`CREATE TABLE items (sku TEXT, avg_daily_demand REAL)`,
		`INSERT INTO items VALUES ('A-1', 4.5)`,
	)

	_, err := store.Snapshots()
	assert.ErrorIs(t, err, ErrNoIDColumn)
}

func TestStore_Snapshots_MissingTable(t *testing.T) {
	store := setupCatalog(t, "")

	_, err := store.Snapshots()
	assert.Error(t, err)
}

func TestStore_Snapshots_SkipsBadID(t *testing.T) {
	store := setupCatalog(t,
		`CREATE TABLE items (id INTEGER, avg_daily_demand REAL)`,
		`INSERT INTO items VALUES (0, 1)`,
		`INSERT INTO items VALUES (-5, 2)`,
		`INSERT INTO items VALUES (7, 3)`,
	)

	snaps, err := store.Snapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.EqualValues(t, 7, snaps[0].ItemID)
}

func TestStore_WriteBack(t *testing.T) {
	store := setupCatalog(t,
		`CREATE TABLE items (
			id INTEGER PRIMARY KEY,
			eoq REAL,
			reorder_point REAL,
			safety_stock REAL
		)`,
		`INSERT INTO items VALUES (1, 0, 0, 0)`,
		`INSERT INTO items VALUES (2, 0, 0, 0)`,
	)

	updated, err := store.WriteBack([]*model.OptimizationResult{
		{ItemID: 1, EOQ: testutil.Float64(120), ReorderPoint: testutil.Float64(40), SafetyStock: testutil.Float64(10)},
		{ItemID: 2, EOQ: testutil.Float64(80), ReorderPoint: nil, SafetyStock: nil},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	var eoq1, rop2 float64
	require.NoError(t, store.conn.DB().Raw("SELECT eoq FROM items WHERE id = 1").Scan(&eoq1).Error)
	require.NoError(t, store.conn.DB().Raw("SELECT reorder_point FROM items WHERE id = 2").Scan(&rop2).Error)
	assert.Equal(t, 120.0, eoq1)
	assert.Equal(t, 0.0, rop2) // 空值不回写
}

func TestStore_WriteBack_MissingColumns(t *testing.T) {
	store := setupCatalog(t,
		`CREATE TABLE items (id INTEGER PRIMARY KEY, eoq REAL)`,
		`INSERT INTO items VALUES (1, 0)`,
	)

	updated, err := store.WriteBack([]*model.OptimizationResult{
		{ItemID: 1, EOQ: testutil.Float64(99), ReorderPoint: testutil.Float64(40)},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, updated)

	var eoq float64
	require.NoError(t, store.conn.DB().Raw("SELECT eoq FROM items WHERE id = 1").Scan(&eoq).Error)
	assert.Equal(t, 99.0, eoq)
}

func TestStore_WriteBack_NoWritableColumns(t *testing.T) {
	store := setupCatalog(t,
		`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)`,
		`INSERT INTO items VALUES (1, 'x')`,
	)

	updated, err := store.WriteBack([]*model.OptimizationResult{
		{ItemID: 1, EOQ: testutil.Float64(99)},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, updated)
}
