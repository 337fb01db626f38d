package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/internal/model"
	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/pkg/pubsub"
	"github.com/qs3c/stockopt_go_server/internal/pkg/queue"
	"github.com/qs3c/stockopt_go_server/internal/repository"
)

var (
	ErrJobNotFound     = errors.New("任务不存在")
	ErrJobAccessDenied = errors.New("无权查看该任务")
)

// OptimizeService 优化任务的创建与查询。
// 实际计算由独立的运行器进程完成，这里只负责建任务、入队和读状态。
type OptimizeService struct {
	jobRepo    *repository.JobRepository
	resultRepo *repository.ResultRepository
	itemRepo   *repository.ItemRepository
	queue      *queue.Queue
	publisher  *pubsub.Publisher
}

func NewOptimizeService(
	jobRepo *repository.JobRepository,
	resultRepo *repository.ResultRepository,
	itemRepo *repository.ItemRepository,
	jobQueue *queue.Queue,
	publisher *pubsub.Publisher,
) *OptimizeService {
	return &OptimizeService{
		jobRepo:    jobRepo,
		resultRepo: resultRepo,
		itemRepo:   itemRepo,
		queue:      jobQueue,
		publisher:  publisher,
	}
}

// CreateJob 创建优化任务并入队。
// 入队失败不回滚任务，轮询中的运行器稍后会捡起 pending 任务。
func (s *OptimizeService) CreateJob(userID int64, req *dto.CreateOptimizationRequest) (*dto.CreateOptimizationResponse, error) {
	count, err := s.itemRepo.CountActive()
	if err != nil {
		return nil, err
	}

	job := &model.OptimizationJob{
		UserID:       userID,
		HorizonDays:  req.HorizonDays,
		ServiceLevel: req.ServiceLevel,
		Status:       "pending",
		ItemsTotal:   int(count),
	}
	if err := s.jobRepo.Create(job); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg := &queue.JobMessage{
		JobID:        job.ID,
		UserID:       userID,
		HorizonDays:  req.HorizonDays,
		ServiceLevel: req.ServiceLevel,
	}
	if err := s.queue.Push(ctx, msg); err != nil {
		log.Printf("Job %d: failed to enqueue, polling runner will pick it up: %v", job.ID, err)
	}

	if err := s.publisher.PublishProgress(ctx, &pubsub.ProgressMessage{
		UserID:     userID,
		JobID:      job.ID,
		Status:     "pending",
		ItemsTotal: int(count),
	}); err != nil {
		log.Printf("Job %d: failed to publish pending event: %v", job.ID, err)
	}

	return &dto.CreateOptimizationResponse{
		JobID:      job.ID,
		ItemsTotal: int(count),
	}, nil
}

// GetJob 获取任务状态。staff 只能看自己的任务
func (s *OptimizeService) GetJob(requesterID int64, role string, jobID int64) (*dto.JobStatusResponse, error) {
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	if role == "staff" && job.UserID != requesterID {
		return nil, ErrJobAccessDenied
	}

	return buildJobStatus(job), nil
}

// LatestJob 最近一次任务的状态。staff 取自己最近的一条，其他角色取全局最新
func (s *OptimizeService) LatestJob(requesterID int64, role string) (*dto.JobStatusResponse, error) {
	if role == "staff" {
		jobs, _, err := s.jobRepo.List(1, 1, requesterID, "")
		if err != nil {
			return nil, err
		}
		if len(jobs) == 0 {
			return nil, ErrJobNotFound
		}
		return buildJobStatus(jobs[0]), nil
	}

	id, err := s.jobRepo.LatestID()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return s.GetJob(requesterID, role, id)
}

// ListJobs 分页获取任务列表。staff 只能看自己的任务
func (s *OptimizeService) ListJobs(requesterID int64, role string, page, pageSize int, status string) ([]*dto.JobListItem, int64, error) {
	var ownerID int64
	if role == "staff" {
		ownerID = requesterID
	}

	jobs, total, err := s.jobRepo.List(page, pageSize, ownerID, status)
	if err != nil {
		return nil, 0, err
	}

	rows := make([]*dto.JobListItem, 0, len(jobs))
	for _, job := range jobs {
		row := &dto.JobListItem{
			JobID:          job.ID,
			Status:         job.Status,
			HorizonDays:    job.HorizonDays,
			ServiceLevel:   job.ServiceLevel,
			ItemsTotal:     job.ItemsTotal,
			ItemsProcessed: job.ItemsProcessed,
			CreatedAt:      job.CreatedAt.Format(time.RFC3339),
		}
		if job.CompletedAt != nil {
			row.CompletedAt = job.CompletedAt.Format(time.RFC3339)
		}
		rows = append(rows, row)
	}

	return rows, total, nil
}

// GetResults 分页获取任务结果，附带物料信息。staff 只能看自己的任务
func (s *OptimizeService) GetResults(requesterID int64, role string, jobID int64, page, pageSize int) ([]*dto.JobResultRow, int64, error) {
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrJobNotFound
		}
		return nil, 0, err
	}
	if role == "staff" && job.UserID != requesterID {
		return nil, 0, ErrJobAccessDenied
	}

	results, total, err := s.resultRepo.PageByJobID(jobID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	itemCache := make(map[int64]*model.Item)

	rows := make([]*dto.JobResultRow, 0, len(results))
	for _, r := range results {
		row := &dto.JobResultRow{
			ItemID:       r.ItemID,
			EOQ:          r.EOQ,
			ReorderPoint: r.ReorderPoint,
			SafetyStock:  r.SafetyStock,
		}

		item, ok := itemCache[r.ItemID]
		if !ok {
			if loaded, err := s.itemRepo.GetByID(r.ItemID); err == nil {
				item = loaded
				itemCache[r.ItemID] = item
			}
		}
		if item != nil {
			row.ItemSKU = item.SKU
			row.ItemName = item.Name
		}

		rows = append(rows, row)
	}

	return rows, total, nil
}

func buildJobStatus(job *model.OptimizationJob) *dto.JobStatusResponse {
	resp := &dto.JobStatusResponse{
		JobID:          job.ID,
		Status:         job.Status,
		HorizonDays:    job.HorizonDays,
		ServiceLevel:   job.ServiceLevel,
		ItemsTotal:     job.ItemsTotal,
		ItemsProcessed: job.ItemsProcessed,
		ErrorMessage:   job.ErrorMessage,
		CreatedAt:      job.CreatedAt.Format(time.RFC3339),
	}
	if job.ResultSnapshot != "" {
		resp.ResultSnapshot = json.RawMessage(job.ResultSnapshot)
	}
	if job.ExportURL != nil {
		resp.ExportURL = *job.ExportURL
	}
	if job.StartedAt != nil {
		resp.StartedAt = job.StartedAt.Format(time.RFC3339)
	}
	if job.CompletedAt != nil {
		resp.CompletedAt = job.CompletedAt.Format(time.RFC3339)
	}
	return resp
}
