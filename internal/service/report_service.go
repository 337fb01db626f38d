package service

import (
	"time"

	"github.com/qs3c/stockopt_go_server/internal/model"
	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/repository"
)

// ReportService 报表查询
type ReportService struct {
	itemRepo     *repository.ItemRepository
	supplierRepo *repository.SupplierRepository
	movementRepo *repository.MovementRepository
}

func NewReportService(
	itemRepo *repository.ItemRepository,
	supplierRepo *repository.SupplierRepository,
	movementRepo *repository.MovementRepository,
) *ReportService {
	return &ReportService{
		itemRepo:     itemRepo,
		supplierRepo: supplierRepo,
		movementRepo: movementRepo,
	}
}

// StockSummary 库存总览
func (s *ReportService) StockSummary() (*dto.StockSummaryReport, error) {
	totals, err := s.itemRepo.Totals()
	if err != nil {
		return nil, err
	}

	low, err := s.itemRepo.ListBelowReorderPoint()
	if err != nil {
		return nil, err
	}

	return &dto.StockSummaryReport{
		TotalItems:     int(totals.TotalItems),
		ActiveItems:    int(totals.ActiveItems),
		TotalQuantity:  int(totals.TotalQuantity),
		InventoryValue: totals.InventoryValue,
		LowStockCount:  len(low),
	}, nil
}

// LowStock 低于再订货点的物料清单
func (s *ReportService) LowStock() ([]*dto.LowStockItem, error) {
	items, err := s.itemRepo.ListBelowReorderPoint()
	if err != nil {
		return nil, err
	}

	supplierCache := make(map[int64]*model.Supplier)

	rows := make([]*dto.LowStockItem, 0, len(items))
	for _, item := range items {
		row := &dto.LowStockItem{
			ID:           item.ID,
			SKU:          item.SKU,
			Name:         item.Name,
			Quantity:     item.Quantity,
			ReorderPoint: item.ReorderPoint,
			EOQ:          item.EOQ,
		}

		if item.SupplierID != nil {
			supplier, ok := supplierCache[*item.SupplierID]
			if !ok {
				if loaded, err := s.supplierRepo.GetByID(*item.SupplierID); err == nil {
					supplier = loaded
					supplierCache[*item.SupplierID] = supplier
				}
			}
			if supplier != nil {
				row.SupplierName = supplier.Name
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// Valuation 按仓库聚合的库存货值
func (s *ReportService) Valuation() ([]*dto.WarehouseValuationRow, error) {
	rows, err := s.itemRepo.ValuationByWarehouse()
	if err != nil {
		return nil, err
	}

	result := make([]*dto.WarehouseValuationRow, 0, len(rows))
	for _, r := range rows {
		row := &dto.WarehouseValuationRow{
			WarehouseID:    r.WarehouseID,
			WarehouseName:  r.WarehouseName,
			TotalQuantity:  r.TotalQuantity,
			InventoryValue: r.InventoryValue,
		}
		if row.WarehouseID == nil {
			row.WarehouseName = "未分配"
		}
		result = append(result, row)
	}

	return result, nil
}

// ValuationByCategory 按分类聚合的库存货值
func (s *ReportService) ValuationByCategory() ([]*dto.CategoryValuationRow, error) {
	rows, err := s.itemRepo.ValuationByCategory()
	if err != nil {
		return nil, err
	}

	result := make([]*dto.CategoryValuationRow, 0, len(rows))
	for _, r := range rows {
		row := &dto.CategoryValuationRow{
			Category:       r.Category,
			TotalQuantity:  r.TotalQuantity,
			InventoryValue: r.InventoryValue,
		}
		if row.Category == "" {
			row.Category = "未分类"
		}
		result = append(result, row)
	}

	return result, nil
}

// MovementSummary 最近 days 天按日汇总的出入库统计
func (s *ReportService) MovementSummary(days int) ([]*dto.MovementSummaryRow, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	rows, err := s.movementRepo.SummarySince(since)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.MovementSummaryRow, 0, len(rows))
	for _, r := range rows {
		result = append(result, &dto.MovementSummaryRow{
			Date:     r.Date,
			Type:     r.Type,
			Total:    int(r.Total),
			Quantity: int(r.Quantity),
		})
	}

	return result, nil
}
