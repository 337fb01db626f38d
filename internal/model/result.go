package model

import (
	"time"
)

type OptimizationResult struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	JobID        int64     `gorm:"not null;uniqueIndex:uk_job_item" json:"job_id"`
	ItemID       int64     `gorm:"not null;uniqueIndex:uk_job_item" json:"item_id"`
	EOQ          *float64  `gorm:"column:eoq" json:"eoq"`
	ReorderPoint *float64  `json:"reorder_point"`
	SafetyStock  *float64  `json:"safety_stock"`
	CreatedAt    time.Time `json:"created_at"`
}

func (OptimizationResult) TableName() string {
	return "optimization_results"
}
