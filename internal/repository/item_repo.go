package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/internal/model"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(item *model.Item) error {
	return r.db.Create(item).Error
}

func (r *ItemRepository) GetByID(id int64) (*model.Item, error) {
	var item model.Item
	err := r.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) GetBySKU(sku string) (*model.Item, error) {
	var item model.Item
	err := r.db.Where("sku = ?", sku).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) Update(item *model.Item) error {
	return r.db.Save(item).Error
}

func (r *ItemRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Item{}).Where("id = ?", id).Updates(fields).Error
}

func (r *ItemRepository) Delete(id int64) error {
	return r.db.Delete(&model.Item{}, id).Error
}

func (r *ItemRepository) ExistsBySKU(sku string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Item{}).Where("sku = ?", sku).Count(&count).Error
	return count > 0, err
}

// List 分页获取物料列表，可按关键字和启用状态过滤
func (r *ItemRepository) List(page, pageSize int, search string, activeOnly bool) ([]*model.Item, int64, error) {
	var items []*model.Item
	var total int64

	query := r.db.Model(&model.Item{})
	if search != "" {
		query = query.Where("sku LIKE ? OR name LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("sku ASC").Offset(offset).Limit(pageSize).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// CountActive 统计启用中的物料数，创建优化任务时用
func (r *ItemRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&model.Item{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

// AdjustQuantity 按增量调整库存
func (r *ItemRepository) AdjustQuantity(id int64, delta int) error {
	return r.db.Model(&model.Item{}).Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
}

// SetQuantity 设置库存绝对值（盘点调整用）
func (r *ItemRepository) SetQuantity(id int64, quantity int) error {
	return r.db.Model(&model.Item{}).Where("id = ?", id).
		Update("quantity", quantity).Error
}

// TakeQuantity 扣减库存。条件更新保证并发出库不会把库存扣成负数，
// 余量不足时不更新并返回 false。
func (r *ItemRepository) TakeQuantity(id int64, qty int) (bool, error) {
	res := r.db.Model(&model.Item{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListBelowReorderPoint 库存低于再订货点的启用物料
func (r *ItemRepository) ListBelowReorderPoint() ([]*model.Item, error) {
	var items []*model.Item
	err := r.db.Where("is_active = ? AND reorder_point > 0 AND quantity < reorder_point", true).
		Order("quantity ASC").
		Find(&items).Error
	return items, err
}

// StockTotals 库存总览聚合
type StockTotals struct {
	TotalItems     int64
	ActiveItems    int64
	TotalQuantity  int64
	InventoryValue float64
}

// Totals 统计物料数和启用物料的库存总量与总货值
func (r *ItemRepository) Totals() (*StockTotals, error) {
	var totals StockTotals

	if err := r.db.Model(&model.Item{}).Count(&totals.TotalItems).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Item{}).Where("is_active = ?", true).
		Count(&totals.ActiveItems).Error; err != nil {
		return nil, err
	}

	var agg struct {
		TotalQuantity  int64
		InventoryValue float64
	}
	err := r.db.Model(&model.Item{}).Where("is_active = ?", true).
		Select("COALESCE(SUM(quantity), 0) AS total_quantity, COALESCE(SUM(quantity * unit_cost), 0) AS inventory_value").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	totals.TotalQuantity = agg.TotalQuantity
	totals.InventoryValue = agg.InventoryValue
	return &totals, nil
}

// ValuationRow 按仓库聚合的库存货值，未分配仓库的物料 WarehouseID 为空
type ValuationRow struct {
	WarehouseID    *int64
	WarehouseName  string
	TotalQuantity  int64
	InventoryValue float64
}

// ValuationByWarehouse 按仓库统计启用物料的库存量和货值
func (r *ItemRepository) ValuationByWarehouse() ([]*ValuationRow, error) {
	var rows []*ValuationRow
	err := r.db.Model(&model.Item{}).
		Select("items.warehouse_id AS warehouse_id, warehouses.name AS warehouse_name, "+
			"COALESCE(SUM(items.quantity), 0) AS total_quantity, "+
			"COALESCE(SUM(items.quantity * items.unit_cost), 0) AS inventory_value").
		Joins("LEFT JOIN warehouses ON warehouses.id = items.warehouse_id").
		Where("items.is_active = ?", true).
		Group("items.warehouse_id, warehouses.name").
		Order("inventory_value DESC").
		Scan(&rows).Error
	return rows, err
}

// CategoryValuationRow 按分类聚合的库存货值，未填分类的物料 Category 为空串
type CategoryValuationRow struct {
	Category       string
	TotalQuantity  int64
	InventoryValue float64
}

// ValuationByCategory 按分类统计启用物料的库存量和货值
func (r *ItemRepository) ValuationByCategory() ([]*CategoryValuationRow, error) {
	var rows []*CategoryValuationRow
	err := r.db.Model(&model.Item{}).
		Select("category, COALESCE(SUM(quantity), 0) AS total_quantity, "+
			"COALESCE(SUM(quantity * unit_cost), 0) AS inventory_value").
		Where("is_active = ?", true).
		Group("category").
		Order("inventory_value DESC").
		Scan(&rows).Error
	return rows, err
}
