package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/internal/model"
)

var fixtureSeq int64

func nextSeq() int64 {
	return atomic.AddInt64(&fixtureSeq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	seq := nextSeq()
	email := fmt.Sprintf("test_%d@example.com", seq)
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", seq),
		Email:        &email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		Role:         "staff",
		IsActive:     true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithPasswordHash 设置密码哈希
func WithPasswordHash(hash string) func(*model.User) {
	return func(u *model.User) {
		u.PasswordHash = hash
	}
}

// TestItem 创建测试物料
func TestItem(t *testing.T, db *gorm.DB, opts ...func(*model.Item)) *model.Item {
	t.Helper()

	seq := nextSeq()
	item := &model.Item{
		SKU:            fmt.Sprintf("SKU-%04d", seq),
		Name:           fmt.Sprintf("Test Item %d", seq),
		Quantity:       100,
		UnitCost:       10,
		AvgDailyDemand: 5,
		LeadTimeDays:   7,
		OrderCost:      50,
		IsActive:       true,
	}

	for _, opt := range opts {
		opt(item)
	}

	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}

	return item
}

// WithSKU 设置 SKU
func WithSKU(sku string) func(*model.Item) {
	return func(i *model.Item) {
		i.SKU = sku
	}
}

// WithQuantity 设置库存数量
func WithQuantity(quantity int) func(*model.Item) {
	return func(i *model.Item) {
		i.Quantity = quantity
	}
}

// WithCategory 设置分类
func WithCategory(category string) func(*model.Item) {
	return func(i *model.Item) {
		i.Category = category
	}
}

// WithDemand 设置日均需求和到货周期
func WithDemand(avgDaily, leadTimeDays float64) func(*model.Item) {
	return func(i *model.Item) {
		i.AvgDailyDemand = avgDaily
		i.LeadTimeDays = leadTimeDays
	}
}

// WithReorderPoint 设置再订货点
func WithReorderPoint(rop float64) func(*model.Item) {
	return func(i *model.Item) {
		i.ReorderPoint = rop
	}
}

// WithInactive 停用物料
func WithInactive() func(*model.Item) {
	return func(i *model.Item) {
		i.IsActive = false
	}
}

// WithSupplier 关联供应商
func WithSupplier(supplierID int64) func(*model.Item) {
	return func(i *model.Item) {
		i.SupplierID = &supplierID
	}
}

// WithWarehouse 关联仓库
func WithWarehouse(warehouseID int64) func(*model.Item) {
	return func(i *model.Item) {
		i.WarehouseID = &warehouseID
	}
}

// WithUnitCost 设置单位成本
func WithUnitCost(cost float64) func(*model.Item) {
	return func(i *model.Item) {
		i.UnitCost = cost
	}
}

// TestSupplier 创建测试供应商
func TestSupplier(t *testing.T, db *gorm.DB, opts ...func(*model.Supplier)) *model.Supplier {
	t.Helper()

	supplier := &model.Supplier{
		Name:         fmt.Sprintf("Test Supplier %d", nextSeq()),
		LeadTimeDays: 7,
		IsActive:     true,
	}

	for _, opt := range opts {
		opt(supplier)
	}

	if err := db.Create(supplier).Error; err != nil {
		t.Fatalf("Failed to create test supplier: %v", err)
	}

	return supplier
}

// TestWarehouse 创建测试仓库
func TestWarehouse(t *testing.T, db *gorm.DB, opts ...func(*model.Warehouse)) *model.Warehouse {
	t.Helper()

	seq := nextSeq()
	warehouse := &model.Warehouse{
		Code:     fmt.Sprintf("WH-%04d", seq),
		Name:     fmt.Sprintf("Test Warehouse %d", seq),
		IsActive: true,
	}

	for _, opt := range opts {
		opt(warehouse)
	}

	if err := db.Create(warehouse).Error; err != nil {
		t.Fatalf("Failed to create test warehouse: %v", err)
	}

	return warehouse
}

// TestMovement 创建测试库存变动
func TestMovement(t *testing.T, db *gorm.DB, itemID, userID int64, movementType string, quantity int) *model.StockMovement {
	t.Helper()

	movement := &model.StockMovement{
		ItemID:   itemID,
		UserID:   userID,
		Type:     movementType,
		Quantity: quantity,
	}

	if err := db.Create(movement).Error; err != nil {
		t.Fatalf("Failed to create test movement: %v", err)
	}

	return movement
}

// TestJob 创建测试优化任务
func TestJob(t *testing.T, db *gorm.DB, userID int64, status string, opts ...func(*model.OptimizationJob)) *model.OptimizationJob {
	t.Helper()

	job := &model.OptimizationJob{
		UserID:       userID,
		HorizonDays:  90,
		ServiceLevel: 0.95,
		Status:       status,
	}

	for _, opt := range opts {
		opt(job)
	}

	if err := db.Create(job).Error; err != nil {
		t.Fatalf("Failed to create test job: %v", err)
	}

	return job
}

// WithItemsTotal 设置任务物料总数
func WithItemsTotal(total int) func(*model.OptimizationJob) {
	return func(j *model.OptimizationJob) {
		j.ItemsTotal = total
	}
}

// TestResult 创建测试优化结果
func TestResult(t *testing.T, db *gorm.DB, jobID, itemID int64, eoq, rop, ss *float64) *model.OptimizationResult {
	t.Helper()

	result := &model.OptimizationResult{
		JobID:        jobID,
		ItemID:       itemID,
		EOQ:          eoq,
		ReorderPoint: rop,
		SafetyStock:  ss,
	}

	if err := db.Create(result).Error; err != nil {
		t.Fatalf("Failed to create test result: %v", err)
	}

	return result
}

// Float64 返回 float64 指针，测试里构造可空字段用
func Float64(v float64) *float64 {
	return &v
}
