package model

import (
	"time"
)

type Supplier struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	ContactName  string    `gorm:"size:100" json:"contact_name,omitempty"`
	ContactEmail string    `gorm:"size:100" json:"contact_email,omitempty"`
	Phone        string    `gorm:"size:50" json:"phone,omitempty"`
	Address      string    `gorm:"size:500" json:"address,omitempty"`
	LeadTimeDays float64   `gorm:"default:0" json:"lead_time_days"` // 平均到货周期（天）
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
