package model

import (
	"time"
)

type StockMovement struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ItemID    int64     `gorm:"not null;index" json:"item_id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"size:20;not null;index" json:"type"` // in, out, adjust
	Quantity  int       `gorm:"not null" json:"quantity"`           // adjust 时为调整后的绝对数量
	Reason    string    `gorm:"size:500" json:"reason,omitempty"`
	Reference string    `gorm:"size:100" json:"reference,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}
