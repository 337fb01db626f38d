package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/internal/model"
)

type WarehouseRepository struct {
	db *gorm.DB
}

func NewWarehouseRepository(db *gorm.DB) *WarehouseRepository {
	return &WarehouseRepository{db: db}
}

func (r *WarehouseRepository) Create(warehouse *model.Warehouse) error {
	return r.db.Create(warehouse).Error
}

func (r *WarehouseRepository) GetByID(id int64) (*model.Warehouse, error) {
	var warehouse model.Warehouse
	err := r.db.Where("id = ?", id).First(&warehouse).Error
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *WarehouseRepository) GetByCode(code string) (*model.Warehouse, error) {
	var warehouse model.Warehouse
	err := r.db.Where("code = ?", code).First(&warehouse).Error
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *WarehouseRepository) Update(warehouse *model.Warehouse) error {
	return r.db.Save(warehouse).Error
}

func (r *WarehouseRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Warehouse{}).Where("id = ?", id).Updates(fields).Error
}

func (r *WarehouseRepository) Delete(id int64) error {
	return r.db.Delete(&model.Warehouse{}, id).Error
}

func (r *WarehouseRepository) ExistsByCode(code string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Warehouse{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

// CountItems 仓库内的物料数，删除前检查用
func (r *WarehouseRepository) CountItems(id int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Item{}).Where("warehouse_id = ?", id).Count(&count).Error
	return count, err
}

func (r *WarehouseRepository) List(page, pageSize int) ([]*model.Warehouse, int64, error) {
	var warehouses []*model.Warehouse
	var total int64

	query := r.db.Model(&model.Warehouse{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("code ASC").Offset(offset).Limit(pageSize).Find(&warehouses).Error; err != nil {
		return nil, 0, err
	}

	return warehouses, total, nil
}
