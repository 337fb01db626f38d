package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/internal/model"
)

type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) Create(supplier *model.Supplier) error {
	return r.db.Create(supplier).Error
}

func (r *SupplierRepository) GetByID(id int64) (*model.Supplier, error) {
	var supplier model.Supplier
	err := r.db.Where("id = ?", id).First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *SupplierRepository) Update(supplier *model.Supplier) error {
	return r.db.Save(supplier).Error
}

func (r *SupplierRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Supplier{}).Where("id = ?", id).Updates(fields).Error
}

func (r *SupplierRepository) Delete(id int64) error {
	return r.db.Delete(&model.Supplier{}, id).Error
}

// CountItems 供应商名下的物料数，删除前检查用
func (r *SupplierRepository) CountItems(id int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Item{}).Where("supplier_id = ?", id).Count(&count).Error
	return count, err
}

func (r *SupplierRepository) List(page, pageSize int, search string) ([]*model.Supplier, int64, error) {
	var suppliers []*model.Supplier
	var total int64

	query := r.db.Model(&model.Supplier{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("name ASC").Offset(offset).Limit(pageSize).Find(&suppliers).Error; err != nil {
		return nil, 0, err
	}

	return suppliers, total, nil
}
