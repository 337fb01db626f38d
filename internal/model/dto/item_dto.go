package dto

// CreateItemRequest 创建物料请求
type CreateItemRequest struct {
	SKU            string   `json:"sku" binding:"required,max=50"`
	Name           string   `json:"name" binding:"required,max=200"`
	Description    string   `json:"description,omitempty" binding:"omitempty,max=2000"`
	Category       string   `json:"category,omitempty" binding:"omitempty,max=100"`
	Quantity       int      `json:"quantity,omitempty" binding:"omitempty,min=0"`
	UnitCost       float64  `json:"unit_cost,omitempty" binding:"omitempty,min=0"`
	AvgDailyDemand float64  `json:"avg_daily_demand,omitempty" binding:"omitempty,min=0"`
	LeadTimeDays   float64  `json:"lead_time_days,omitempty" binding:"omitempty,min=0"`
	SafetyStock    float64  `json:"safety_stock,omitempty" binding:"omitempty,min=0"`
	OrderCost      *float64 `json:"order_cost,omitempty" binding:"omitempty,min=0"`
	SupplierID     *int64   `json:"supplier_id,omitempty"`
	WarehouseID    *int64   `json:"warehouse_id,omitempty"`
}

// UpdateItemRequest 更新物料请求
type UpdateItemRequest struct {
	Name           *string  `json:"name,omitempty" binding:"omitempty,max=200"`
	Description    *string  `json:"description,omitempty" binding:"omitempty,max=2000"`
	Category       *string  `json:"category,omitempty" binding:"omitempty,max=100"`
	UnitCost       *float64 `json:"unit_cost,omitempty" binding:"omitempty,min=0"`
	AvgDailyDemand *float64 `json:"avg_daily_demand,omitempty" binding:"omitempty,min=0"`
	LeadTimeDays   *float64 `json:"lead_time_days,omitempty" binding:"omitempty,min=0"`
	SafetyStock    *float64 `json:"safety_stock,omitempty" binding:"omitempty,min=0"`
	OrderCost      *float64 `json:"order_cost,omitempty" binding:"omitempty,min=0"`
	SupplierID     *int64   `json:"supplier_id,omitempty"`
	WarehouseID    *int64   `json:"warehouse_id,omitempty"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

// ItemListItem 物料列表项
type ItemListItem struct {
	ID           int64   `json:"id"`
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	Category     string  `json:"category,omitempty"`
	Quantity     int     `json:"quantity"`
	ReorderPoint float64 `json:"reorder_point"`
	EOQ          float64 `json:"eoq"`
	LowStock     bool    `json:"low_stock"`
	IsActive     bool    `json:"is_active"`
	UpdatedAt    string  `json:"updated_at"`
}
