package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/internal/model"
	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/repository"
)

var (
	ErrSKUExists         = errors.New("SKU 已存在")
	ErrItemNotFound      = errors.New("物料不存在")
	ErrSupplierNotFound  = errors.New("供应商不存在")
	ErrWarehouseNotFound = errors.New("仓库不存在")
)

type ItemService struct {
	itemRepo      *repository.ItemRepository
	supplierRepo  *repository.SupplierRepository
	warehouseRepo *repository.WarehouseRepository
}

func NewItemService(
	itemRepo *repository.ItemRepository,
	supplierRepo *repository.SupplierRepository,
	warehouseRepo *repository.WarehouseRepository,
) *ItemService {
	return &ItemService{
		itemRepo:      itemRepo,
		supplierRepo:  supplierRepo,
		warehouseRepo: warehouseRepo,
	}
}

// Create 创建物料
func (s *ItemService) Create(req *dto.CreateItemRequest) (*model.Item, error) {
	exists, err := s.itemRepo.ExistsBySKU(req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSKUExists
	}

	if err := s.checkRefs(req.SupplierID, req.WarehouseID); err != nil {
		return nil, err
	}

	item := &model.Item{
		SKU:            req.SKU,
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		Quantity:       req.Quantity,
		UnitCost:       req.UnitCost,
		AvgDailyDemand: req.AvgDailyDemand,
		LeadTimeDays:   req.LeadTimeDays,
		SafetyStock:    req.SafetyStock,
		OrderCost:      50,
		IsActive:       true,
		SupplierID:     req.SupplierID,
		WarehouseID:    req.WarehouseID,
	}
	if req.OrderCost != nil {
		item.OrderCost = *req.OrderCost
	}

	if err := s.itemRepo.Create(item); err != nil {
		return nil, err
	}

	return item, nil
}

// Get 获取物料详情
func (s *ItemService) Get(id int64) (*model.Item, error) {
	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// Update 更新物料，只改请求里带的字段
func (s *ItemService) Update(id int64, req *dto.UpdateItemRequest) (*model.Item, error) {
	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	if err := s.checkRefs(req.SupplierID, req.WarehouseID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.UnitCost != nil {
		item.UnitCost = *req.UnitCost
	}
	if req.AvgDailyDemand != nil {
		item.AvgDailyDemand = *req.AvgDailyDemand
	}
	if req.LeadTimeDays != nil {
		item.LeadTimeDays = *req.LeadTimeDays
	}
	if req.SafetyStock != nil {
		item.SafetyStock = *req.SafetyStock
	}
	if req.OrderCost != nil {
		item.OrderCost = *req.OrderCost
	}
	if req.SupplierID != nil {
		item.SupplierID = req.SupplierID
	}
	if req.WarehouseID != nil {
		item.WarehouseID = req.WarehouseID
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := s.itemRepo.Update(item); err != nil {
		return nil, err
	}

	return item, nil
}

// Deactivate 停用物料。不做物理删除，保留变动历史和优化结果的引用
func (s *ItemService) Deactivate(id int64) error {
	_, err := s.itemRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}

	return s.itemRepo.UpdateFields(id, map[string]interface{}{
		"is_active": false,
	})
}

// List 分页查询物料列表
func (s *ItemService) List(page, pageSize int, search string, activeOnly bool) ([]*dto.ItemListItem, int64, error) {
	items, total, err := s.itemRepo.List(page, pageSize, search, activeOnly)
	if err != nil {
		return nil, 0, err
	}

	list := make([]*dto.ItemListItem, 0, len(items))
	for _, item := range items {
		list = append(list, &dto.ItemListItem{
			ID:           item.ID,
			SKU:          item.SKU,
			Name:         item.Name,
			Category:     item.Category,
			Quantity:     item.Quantity,
			ReorderPoint: item.ReorderPoint,
			EOQ:          item.EOQ,
			LowStock:     item.ReorderPoint > 0 && float64(item.Quantity) < item.ReorderPoint,
			IsActive:     item.IsActive,
			UpdatedAt:    item.UpdatedAt.Format(time.RFC3339),
		})
	}

	return list, total, nil
}

func (s *ItemService) checkRefs(supplierID, warehouseID *int64) error {
	if supplierID != nil {
		if _, err := s.supplierRepo.GetByID(*supplierID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSupplierNotFound
			}
			return err
		}
	}
	if warehouseID != nil {
		if _, err := s.warehouseRepo.GetByID(*warehouseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWarehouseNotFound
			}
			return err
		}
	}
	return nil
}
