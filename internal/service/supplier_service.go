package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/internal/model"
	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/repository"
)

var ErrSupplierHasItems = errors.New("供应商下还有物料，不能删除")

type SupplierService struct {
	supplierRepo *repository.SupplierRepository
}

func NewSupplierService(supplierRepo *repository.SupplierRepository) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo}
}

// Create 创建供应商
func (s *SupplierService) Create(req *dto.CreateSupplierRequest) (*model.Supplier, error) {
	supplier := &model.Supplier{
		Name:         req.Name,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		Address:      req.Address,
		LeadTimeDays: req.LeadTimeDays,
		IsActive:     true,
	}

	if err := s.supplierRepo.Create(supplier); err != nil {
		return nil, err
	}

	return supplier, nil
}

// Get 获取供应商详情
func (s *SupplierService) Get(id int64) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}
	return supplier, nil
}

// Update 更新供应商
func (s *SupplierService) Update(id int64, req *dto.UpdateSupplierRequest) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.ContactName != nil {
		supplier.ContactName = *req.ContactName
	}
	if req.ContactEmail != nil {
		supplier.ContactEmail = *req.ContactEmail
	}
	if req.Phone != nil {
		supplier.Phone = *req.Phone
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.LeadTimeDays != nil {
		supplier.LeadTimeDays = *req.LeadTimeDays
	}
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}

	if err := s.supplierRepo.Update(supplier); err != nil {
		return nil, err
	}

	return supplier, nil
}

// Delete 删除供应商，名下还有物料时拒绝
func (s *SupplierService) Delete(id int64) error {
	_, err := s.supplierRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSupplierNotFound
		}
		return err
	}

	count, err := s.supplierRepo.CountItems(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSupplierHasItems
	}

	return s.supplierRepo.Delete(id)
}

// List 分页查询供应商
func (s *SupplierService) List(page, pageSize int, search string) ([]*model.Supplier, int64, error) {
	return s.supplierRepo.List(page, pageSize, search)
}
