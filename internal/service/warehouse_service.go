package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/internal/model"
	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/repository"
)

var (
	ErrWarehouseCodeExists = errors.New("仓库编码已存在")
	ErrWarehouseHasItems   = errors.New("仓库下还有物料，不能删除")
)

type WarehouseService struct {
	warehouseRepo *repository.WarehouseRepository
}

func NewWarehouseService(warehouseRepo *repository.WarehouseRepository) *WarehouseService {
	return &WarehouseService{warehouseRepo: warehouseRepo}
}

// Create 创建仓库
func (s *WarehouseService) Create(req *dto.CreateWarehouseRequest) (*model.Warehouse, error) {
	exists, err := s.warehouseRepo.ExistsByCode(req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrWarehouseCodeExists
	}

	warehouse := &model.Warehouse{
		Code:     req.Code,
		Name:     req.Name,
		Location: req.Location,
		Capacity: req.Capacity,
		IsActive: true,
	}

	if err := s.warehouseRepo.Create(warehouse); err != nil {
		return nil, err
	}

	return warehouse, nil
}

// Get 获取仓库详情
func (s *WarehouseService) Get(id int64) (*model.Warehouse, error) {
	warehouse, err := s.warehouseRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarehouseNotFound
		}
		return nil, err
	}
	return warehouse, nil
}

// Update 更新仓库
func (s *WarehouseService) Update(id int64, req *dto.UpdateWarehouseRequest) (*model.Warehouse, error) {
	warehouse, err := s.warehouseRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWarehouseNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		warehouse.Name = *req.Name
	}
	if req.Location != nil {
		warehouse.Location = *req.Location
	}
	if req.Capacity != nil {
		warehouse.Capacity = *req.Capacity
	}
	if req.IsActive != nil {
		warehouse.IsActive = *req.IsActive
	}

	if err := s.warehouseRepo.Update(warehouse); err != nil {
		return nil, err
	}

	return warehouse, nil
}

// Delete 删除仓库，名下还有物料时拒绝
func (s *WarehouseService) Delete(id int64) error {
	_, err := s.warehouseRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWarehouseNotFound
		}
		return err
	}

	count, err := s.warehouseRepo.CountItems(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrWarehouseHasItems
	}

	return s.warehouseRepo.Delete(id)
}

// List 分页查询仓库
func (s *WarehouseService) List(page, pageSize int) ([]*model.Warehouse, int64, error) {
	return s.warehouseRepo.List(page, pageSize)
}
