package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/internal/model"
)

type ResultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// SaveBatch 单事务写入一批结果。任一行失败整批回滚，
// (job_id, item_id) 唯一索引兜底防止重复写入。
func (r *ResultRepository) SaveBatch(results []*model.OptimizationResult) error {
	if len(results) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		// 分段插入避免超出 SQLite 绑定变量上限
		return tx.CreateInBatches(results, 100).Error
	})
}

func (r *ResultRepository) ListByJobID(jobID int64) ([]*model.OptimizationResult, error) {
	var results []*model.OptimizationResult
	err := r.db.Where("job_id = ?", jobID).Order("item_id ASC").Find(&results).Error
	return results, err
}

// PageByJobID 分页获取任务结果，结果集可能有几千行，API 侧都走分页
func (r *ResultRepository) PageByJobID(jobID int64, page, pageSize int) ([]*model.OptimizationResult, int64, error) {
	var results []*model.OptimizationResult
	var total int64

	query := r.db.Model(&model.OptimizationResult{}).Where("job_id = ?", jobID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("item_id ASC").Offset(offset).Limit(pageSize).Find(&results).Error; err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

func (r *ResultRepository) CountByJobID(jobID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.OptimizationResult{}).Where("job_id = ?", jobID).Count(&count).Error
	return count, err
}

// DeleteByJobIDs 删除指定任务的结果（保留期清理用）
func (r *ResultRepository) DeleteByJobIDs(jobIDs []int64) error {
	if len(jobIDs) == 0 {
		return nil
	}
	return r.db.Where("job_id IN ?", jobIDs).Delete(&model.OptimizationResult{}).Error
}
