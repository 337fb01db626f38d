package dto

// StockSummaryReport 库存总览报表
type StockSummaryReport struct {
	TotalItems     int     `json:"total_items"`
	ActiveItems    int     `json:"active_items"`
	TotalQuantity  int     `json:"total_quantity"`
	InventoryValue float64 `json:"inventory_value"`
	LowStockCount  int     `json:"low_stock_count"`
}

// LowStockItem 低于再订货点的物料
type LowStockItem struct {
	ID           int64   `json:"id"`
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	ReorderPoint float64 `json:"reorder_point"`
	EOQ          float64 `json:"eoq"`
	SupplierName string  `json:"supplier_name,omitempty"`
}

// WarehouseValuationRow 按仓库聚合的库存货值
type WarehouseValuationRow struct {
	WarehouseID    *int64  `json:"warehouse_id"`
	WarehouseName  string  `json:"warehouse_name"`
	TotalQuantity  int64   `json:"total_quantity"`
	InventoryValue float64 `json:"inventory_value"`
}

// CategoryValuationRow 按分类聚合的库存货值
type CategoryValuationRow struct {
	Category       string  `json:"category"`
	TotalQuantity  int64   `json:"total_quantity"`
	InventoryValue float64 `json:"inventory_value"`
}

// MovementSummaryRow 按日汇总的出入库统计
type MovementSummaryRow struct {
	Date     string `json:"date"`
	Type     string `json:"type"`
	Total    int    `json:"total"`
	Quantity int    `json:"quantity"`
}
