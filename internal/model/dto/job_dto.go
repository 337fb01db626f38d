package dto

import "encoding/json"

// CreateOptimizationRequest 创建优化任务请求
type CreateOptimizationRequest struct {
	HorizonDays  int     `json:"horizon_days" binding:"required,min=1"`
	ServiceLevel float64 `json:"service_level" binding:"required,gt=0,lt=1"`
}

// CreateOptimizationResponse 创建优化任务响应
type CreateOptimizationResponse struct {
	JobID      int64 `json:"job_id"`
	ItemsTotal int   `json:"items_total"`
}

// JobStatusResponse 任务状态响应
type JobStatusResponse struct {
	JobID          int64           `json:"job_id"`
	Status         string          `json:"status"`
	HorizonDays    int             `json:"horizon_days"`
	ServiceLevel   float64         `json:"service_level"`
	ItemsTotal     int             `json:"items_total"`
	ItemsProcessed int             `json:"items_processed"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	ResultSnapshot json.RawMessage `json:"result_snapshot,omitempty"`
	ExportURL      string          `json:"export_url,omitempty"`
	CreatedAt      string          `json:"created_at"`
	StartedAt      string          `json:"started_at,omitempty"`
	CompletedAt    string          `json:"completed_at,omitempty"`
}

// JobListItem 任务列表项
type JobListItem struct {
	JobID          int64   `json:"job_id"`
	Status         string  `json:"status"`
	HorizonDays    int     `json:"horizon_days"`
	ServiceLevel   float64 `json:"service_level"`
	ItemsTotal     int     `json:"items_total"`
	ItemsProcessed int     `json:"items_processed"`
	CreatedAt      string  `json:"created_at"`
	CompletedAt    string  `json:"completed_at,omitempty"`
}

// JobResultRow 单个物料的优化结果
type JobResultRow struct {
	ItemID       int64    `json:"item_id"`
	ItemSKU      string   `json:"item_sku,omitempty"`
	ItemName     string   `json:"item_name,omitempty"`
	EOQ          *float64 `json:"eoq"`
	ReorderPoint *float64 `json:"reorder_point"`
	SafetyStock  *float64 `json:"safety_stock"`
}

// JobProgressEvent 通过 WebSocket 推送的任务进度事件
type JobProgressEvent struct {
	JobID          int64  `json:"job_id"`
	Status         string `json:"status"`
	ItemsTotal     int    `json:"items_total"`
	ItemsProcessed int    `json:"items_processed"`
	Progress       int    `json:"progress"`
	Message        string `json:"message,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}
