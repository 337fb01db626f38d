package dto

// CreateSupplierRequest 创建供应商请求
type CreateSupplierRequest struct {
	Name         string  `json:"name" binding:"required,max=200"`
	ContactName  string  `json:"contact_name,omitempty" binding:"omitempty,max=100"`
	ContactEmail string  `json:"contact_email,omitempty" binding:"omitempty,email"`
	Phone        string  `json:"phone,omitempty" binding:"omitempty,max=50"`
	Address      string  `json:"address,omitempty" binding:"omitempty,max=500"`
	LeadTimeDays float64 `json:"lead_time_days,omitempty" binding:"omitempty,min=0"`
}

// UpdateSupplierRequest 更新供应商请求
type UpdateSupplierRequest struct {
	Name         *string  `json:"name,omitempty" binding:"omitempty,max=200"`
	ContactName  *string  `json:"contact_name,omitempty" binding:"omitempty,max=100"`
	ContactEmail *string  `json:"contact_email,omitempty" binding:"omitempty,email"`
	Phone        *string  `json:"phone,omitempty" binding:"omitempty,max=50"`
	Address      *string  `json:"address,omitempty" binding:"omitempty,max=500"`
	LeadTimeDays *float64 `json:"lead_time_days,omitempty" binding:"omitempty,min=0"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

// CreateWarehouseRequest 创建仓库请求
type CreateWarehouseRequest struct {
	Code     string `json:"code" binding:"required,max=20"`
	Name     string `json:"name" binding:"required,max=200"`
	Location string `json:"location,omitempty" binding:"omitempty,max=500"`
	Capacity int    `json:"capacity,omitempty" binding:"omitempty,min=0"`
}

// UpdateWarehouseRequest 更新仓库请求
type UpdateWarehouseRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,max=200"`
	Location *string `json:"location,omitempty" binding:"omitempty,max=500"`
	Capacity *int    `json:"capacity,omitempty" binding:"omitempty,min=0"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// RecordMovementRequest 库存变动请求
type RecordMovementRequest struct {
	ItemID    int64  `json:"item_id" binding:"required"`
	Type      string `json:"type" binding:"required,oneof=in out adjust"`
	Quantity  int    `json:"quantity" binding:"required,min=0"`
	Reason    string `json:"reason,omitempty" binding:"omitempty,max=500"`
	Reference string `json:"reference,omitempty" binding:"omitempty,max=100"`
}

// MovementListItem 库存变动列表项
type MovementListItem struct {
	ID        int64  `json:"id"`
	ItemID    int64  `json:"item_id"`
	ItemSKU   string `json:"item_sku,omitempty"`
	ItemName  string `json:"item_name,omitempty"`
	Username  string `json:"username,omitempty"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason,omitempty"`
	Reference string `json:"reference,omitempty"`
	CreatedAt string `json:"created_at"`
}
