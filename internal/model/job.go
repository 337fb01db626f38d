package model

import (
	"time"
)

type OptimizationJob struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	UserID         int64      `gorm:"not null;index" json:"user_id"`
	HorizonDays    int        `gorm:"not null" json:"horizon_days"`
	ServiceLevel   float64    `gorm:"not null" json:"service_level"`
	Status         string     `gorm:"size:20;default:pending;index" json:"status"` // pending, running, complete, failed
	ClaimedBy      *string    `gorm:"size:36" json:"claimed_by,omitempty"`
	ItemsTotal     int        `gorm:"default:0" json:"items_total"`
	ItemsProcessed int        `gorm:"default:0" json:"items_processed"`
	ResultSnapshot string     `gorm:"type:text" json:"result_snapshot,omitempty"` // 最多 1000 行结果的 JSON 快照
	ExportURL      *string    `gorm:"size:500" json:"export_url,omitempty"`       // OSS 上的完整结果归档
	ErrorMessage   string     `gorm:"size:500" json:"error_message,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

func (OptimizationJob) TableName() string {
	return "optimization_jobs"
}
