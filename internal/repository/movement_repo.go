package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/internal/model"
)

type MovementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

func (r *MovementRepository) Create(movement *model.StockMovement) error {
	return r.db.Create(movement).Error
}

// List 分页获取变动记录，可按物料和类型过滤，按时间倒序
func (r *MovementRepository) List(page, pageSize int, itemID int64, movementType string) ([]*model.StockMovement, int64, error) {
	var movements []*model.StockMovement
	var total int64

	query := r.db.Model(&model.StockMovement{})
	if itemID > 0 {
		query = query.Where("item_id = ?", itemID)
	}
	if movementType != "" {
		query = query.Where("type = ?", movementType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}

// SummaryRow 按日期和类型汇总的行
type SummaryRow struct {
	Date     string
	Type     string
	Total    int64
	Quantity int64
}

// SummarySince 统计指定时间之后每天的出入库笔数与数量
func (r *MovementRepository) SummarySince(since time.Time) ([]*SummaryRow, error) {
	var rows []*SummaryRow
	err := r.db.Model(&model.StockMovement{}).
		Select("DATE(created_at) AS date, type, COUNT(*) AS total, SUM(quantity) AS quantity").
		Where("created_at >= ?", since).
		Group("DATE(created_at), type").
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}
