package model

import (
	"time"
)

type Item struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	SKU            string    `gorm:"column:sku;size:50;uniqueIndex;not null" json:"sku"`
	Name           string    `gorm:"size:200;not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	Category       string    `gorm:"size:100;index" json:"category,omitempty"`
	Quantity       int       `gorm:"default:0" json:"quantity"`
	UnitCost       float64   `gorm:"default:0" json:"unit_cost"`
	AvgDailyDemand float64   `gorm:"default:0" json:"avg_daily_demand"`
	LeadTimeDays   float64   `gorm:"default:0" json:"lead_time_days"`
	SafetyStock    float64   `gorm:"default:0" json:"safety_stock"`
	OrderCost      float64   `gorm:"default:50" json:"order_cost"`
	ReorderPoint   float64   `gorm:"default:0" json:"reorder_point"`
	EOQ            float64   `gorm:"column:eoq;default:0" json:"eoq"`
	IsActive       bool      `gorm:"default:true;index" json:"is_active"`
	SupplierID     *int64    `gorm:"index" json:"supplier_id,omitempty"`
	WarehouseID    *int64    `gorm:"index" json:"warehouse_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Item) TableName() string {
	return "items"
}
