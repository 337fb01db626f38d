package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/stockopt_go_server/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(job *model.OptimizationJob) error {
	return r.db.Create(job).Error
}

func (r *JobRepository) GetByID(id int64) (*model.OptimizationJob, error) {
	var job model.OptimizationJob
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// LatestID 最近一次创建的任务 ID
func (r *JobRepository) LatestID() (int64, error) {
	var job model.OptimizationJob
	err := r.db.Select("id").Order("id DESC").First(&job).Error
	if err != nil {
		return 0, err
	}
	return job.ID, nil
}

// List 分页获取任务列表，按创建时间倒序。userID 为 0 时不过滤归属
func (r *JobRepository) List(page, pageSize int, userID int64, status string) ([]*model.OptimizationJob, int64, error) {
	var jobs []*model.OptimizationJob
	var total int64

	query := r.db.Model(&model.OptimizationJob{})
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// ClaimByID 认领指定任务。条件更新保证并发下只有一个运行器成功，
// 返回 false 表示任务不存在或已被认领。
func (r *JobRepository) ClaimByID(id int64, runnerID string) (bool, error) {
	res := r.db.Model(&model.OptimizationJob{}).
		Where("id = ? AND status = ?", id, "pending").
		Updates(map[string]interface{}{
			"status":     "running",
			"claimed_by": runnerID,
			"started_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ClaimOldestPending 认领最早的待处理任务。行锁加条件更新，
// 两个运行器同时认领时只有一个拿到。没有待处理任务返回 nil。
func (r *JobRepository) ClaimOldestPending(runnerID string) (*model.OptimizationJob, error) {
	var claimed *model.OptimizationJob

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var job model.OptimizationJob
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ?", "pending").
			Order("created_at ASC, id ASC").
			First(&job).Error
		if err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&model.OptimizationJob{}).
			Where("id = ? AND status = ?", job.ID, "pending").
			Updates(map[string]interface{}{
				"status":     "running",
				"claimed_by": runnerID,
				"started_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		job.Status = "running"
		job.ClaimedBy = &runnerID
		job.StartedAt = &now
		claimed = &job
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return claimed, nil
}

// IncrementProcessed 累加已处理物料数
func (r *JobRepository) IncrementProcessed(id int64, delta int) error {
	return r.db.Model(&model.OptimizationJob{}).Where("id = ?", id).
		Update("items_processed", gorm.Expr("items_processed + ?", delta)).Error
}

// MarkComplete 将运行中的任务置为完成。只有 running 状态可以落终态，
// 更新不到行说明状态机被破坏，返回 ErrRecordNotFound。
func (r *JobRepository) MarkComplete(id int64, snapshot string) error {
	res := r.db.Model(&model.OptimizationJob{}).
		Where("id = ? AND status = ?", id, "running").
		Updates(map[string]interface{}{
			"status":          "complete",
			"result_snapshot": snapshot,
			"completed_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkFailed 将运行中的任务置为失败并记录原因
func (r *JobRepository) MarkFailed(id int64, message string) error {
	res := r.db.Model(&model.OptimizationJob{}).
		Where("id = ? AND status = ?", id, "running").
		Updates(map[string]interface{}{
			"status":        "failed",
			"error_message": message,
			"completed_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetExportURL 记录完整结果归档的地址
func (r *JobRepository) SetExportURL(id int64, url string) error {
	return r.db.Model(&model.OptimizationJob{}).Where("id = ?", id).
		Update("export_url", url).Error
}

// FailStale 将超时未结束的运行中任务置为失败，返回处理的行数
func (r *JobRepository) FailStale(cutoff time.Time, message string) (int64, error) {
	res := r.db.Model(&model.OptimizationJob{}).
		Where("status = ? AND started_at < ?", "running", cutoff).
		Updates(map[string]interface{}{
			"status":        "failed",
			"error_message": message,
			"completed_at":  time.Now(),
		})
	return res.RowsAffected, res.Error
}

// CountByStatus 按状态统计任务数
func (r *JobRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&model.OptimizationJob{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
