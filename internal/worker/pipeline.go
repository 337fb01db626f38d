package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/config"
	"github.com/qs3c/stockopt_go_server/internal/catalog"
	"github.com/qs3c/stockopt_go_server/internal/database"
	"github.com/qs3c/stockopt_go_server/internal/model"
	"github.com/qs3c/stockopt_go_server/internal/optimizer"
	"github.com/qs3c/stockopt_go_server/internal/pkg/metrics"
	"github.com/qs3c/stockopt_go_server/internal/pkg/oss"
	"github.com/qs3c/stockopt_go_server/internal/pkg/pubsub"
	"github.com/qs3c/stockopt_go_server/internal/repository"
)

// Pipeline 优化任务执行器
type Pipeline struct {
	conn      *database.Conn
	store     *catalog.Store
	client    *optimizer.Client
	archive   *oss.Client
	publisher *pubsub.Publisher
	cfg       *config.Config
	runnerID  string
}

// NewPipeline 创建优化任务执行器，runnerID 标识当前工作进程。
// archive 为 nil 时跳过结果归档。
func NewPipeline(
	conn *database.Conn,
	store *catalog.Store,
	client *optimizer.Client,
	archive *oss.Client,
	publisher *pubsub.Publisher,
	cfg *config.Config,
	runnerID string,
) *Pipeline {
	return &Pipeline{
		conn:      conn,
		store:     store,
		client:    client,
		archive:   archive,
		publisher: publisher,
		cfg:       cfg,
		runnerID:  runnerID,
	}
}

// RunnerID 返回工作进程标识
func (p *Pipeline) RunnerID() string {
	return p.runnerID
}

// ClaimNext 认领最早的待处理任务并执行，无任务可领时返回 false
func (p *Pipeline) ClaimNext(ctx context.Context) (bool, error) {
	var job *model.OptimizationJob
	err := p.conn.Retry(func(db *gorm.DB) error {
		claimed, err := repository.NewJobRepository(db).ClaimOldestPending(p.runnerID)
		if err != nil {
			return err
		}
		job = claimed
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to claim job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	return true, p.Execute(ctx, job)
}

// ClaimByID 认领指定任务并执行，已被其他进程抢走时返回 false
func (p *Pipeline) ClaimByID(ctx context.Context, jobID int64) (bool, error) {
	var claimed bool
	err := p.conn.Retry(func(db *gorm.DB) error {
		ok, err := repository.NewJobRepository(db).ClaimByID(jobID, p.runnerID)
		claimed = ok
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to claim job %d: %w", jobID, err)
	}
	if !claimed {
		return false, nil
	}

	var job *model.OptimizationJob
	err = p.conn.Retry(func(db *gorm.DB) error {
		j, err := repository.NewJobRepository(db).GetByID(jobID)
		if err != nil {
			return err
		}
		job = j
		return nil
	})
	if err != nil {
		return true, fmt.Errorf("failed to load job %d: %w", jobID, err)
	}

	return true, p.Execute(ctx, job)
}

// Execute 执行已认领的任务，无论成败任务记录都会落到终态
func (p *Pipeline) Execute(ctx context.Context, job *model.OptimizationJob) error {
	started := time.Now()
	processed := 0
	log.Printf("Job %d: claimed by runner %s", job.ID, p.runnerID)

	// 定义进度推送辅助函数
	publishProgress := func(status string, errMsg string) {
		p.publisher.PublishProgress(ctx, &pubsub.ProgressMessage{
			UserID:         job.UserID,
			JobID:          job.ID,
			Status:         status,
			ItemsTotal:     job.ItemsTotal,
			ItemsProcessed: processed,
			Error:          errMsg,
		})
	}

	// 定义失败处理函数
	fail := func(reason string, err error) error {
		msg := reason
		if err != nil {
			msg = fmt.Sprintf("%s: %v", reason, err)
		}
		msg = truncate(msg, 500)
		if dbErr := p.conn.Retry(func(db *gorm.DB) error {
			return repository.NewJobRepository(db).MarkFailed(job.ID, msg)
		}); dbErr != nil {
			log.Printf("Job %d: failed to record failure: %v", job.ID, dbErr)
		}
		publishProgress("failed", msg)
		metrics.JobsTotal.WithLabelValues("failed").Inc()
		metrics.JobDuration.Observe(time.Since(started).Seconds())
		log.Printf("Job %d: failed: %s", job.ID, msg)
		return errors.New(msg)
	}

	// Step 1: 取物料快照
	log.Printf("Job %d: loading item snapshots", job.ID)
	snapshots, err := p.store.Snapshots()
	if err != nil {
		log.Printf("Job %d: snapshot load failed: %v", job.ID, err)
		snapshots = nil
	}
	if len(snapshots) == 0 {
		return fail("没有可优化的物料", nil)
	}
	if len(snapshots) != job.ItemsTotal {
		log.Printf("Job %d: catalog changed since enqueue, %d items now vs %d at creation",
			job.ID, len(snapshots), job.ItemsTotal)
	}
	publishProgress("running", "")

	// Step 2: 分批调用优化引擎
	batchSize := p.cfg.Optimizer.BatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}
	limit := p.cfg.Optimizer.SnapshotLimit
	if limit <= 0 {
		limit = config.DefaultSnapshotLimit
	}
	batches := splitBatches(snapshots, batchSize)
	log.Printf("Job %d: optimizing %d items in %d batches", job.ID, len(snapshots), len(batches))

	var (
		succeeded     int
		failedBatches int
		savedTotal    int
		lastErr       error
		preview       []snapshotRow
	)

	for i, batch := range batches {
		rows, err := p.client.Optimize(ctx, &optimizer.BatchRequest{
			JobID:        job.ID,
			HorizonDays:  job.HorizonDays,
			ServiceLevel: job.ServiceLevel,
			Items:        batch,
		})
		if err != nil {
			log.Printf("Job %d: batch %d/%d failed: %v", job.ID, i+1, len(batches), err)
			lastErr = err
			failedBatches++
			metrics.BatchesTotal.WithLabelValues("failure").Inc()
			continue
		}
		if len(rows) == 0 {
			log.Printf("Job %d: batch %d/%d returned no usable rows", job.ID, i+1, len(batches))
			lastErr = errors.New("batch returned no usable rows")
			failedBatches++
			metrics.BatchesTotal.WithLabelValues("failure").Inc()
			continue
		}

		results := make([]*model.OptimizationResult, 0, len(rows))
		for _, row := range rows {
			results = append(results, &model.OptimizationResult{
				JobID:        job.ID,
				ItemID:       row.ItemID,
				EOQ:          row.EOQ,
				ReorderPoint: row.ReorderPoint,
				SafetyStock:  row.SafetyStock,
			})
		}

		// 回写目录尽力而为，失败不拖垮批次
		if _, err := p.store.WriteBack(results); err != nil {
			log.Printf("Job %d: catalog write-back failed: %v", job.ID, err)
		}

		if err := p.conn.Retry(func(db *gorm.DB) error {
			return repository.NewResultRepository(db).SaveBatch(results)
		}); err != nil {
			log.Printf("Job %d: batch %d/%d save failed: %v", job.ID, i+1, len(batches), err)
			lastErr = err
			failedBatches++
			metrics.BatchesTotal.WithLabelValues("failure").Inc()
			continue
		}

		if err := p.conn.Retry(func(db *gorm.DB) error {
			return repository.NewJobRepository(db).IncrementProcessed(job.ID, len(results))
		}); err != nil {
			log.Printf("Job %d: failed to bump processed counter: %v", job.ID, err)
		}

		processed += len(results)
		savedTotal += len(results)
		succeeded++
		metrics.BatchesTotal.WithLabelValues("success").Inc()
		metrics.ResultRowsSaved.Add(float64(len(results)))

		for _, r := range results {
			if len(preview) >= limit {
				break
			}
			preview = append(preview, snapshotRow{
				ItemID:       r.ItemID,
				EOQ:          r.EOQ,
				ReorderPoint: r.ReorderPoint,
				SafetyStock:  r.SafetyStock,
			})
		}

		log.Printf("Job %d: batch %d/%d saved %d rows", job.ID, i+1, len(batches), len(results))
		publishProgress("running", "")
	}

	// Step 3: 落终态
	if succeeded == 0 || savedTotal == 0 {
		return fail("所有批次均失败", lastErr)
	}

	snapshot, err := json.Marshal(preview)
	if err != nil {
		return fail("结果快照序列化失败", err)
	}

	if err := p.conn.Retry(func(db *gorm.DB) error {
		return repository.NewJobRepository(db).MarkComplete(job.ID, string(snapshot))
	}); err != nil {
		return fail("任务状态更新失败", err)
	}

	publishProgress("complete", "")
	metrics.JobsTotal.WithLabelValues("complete").Inc()
	metrics.JobDuration.Observe(time.Since(started).Seconds())

	// 归档尽力而为，失败不影响任务终态
	if p.archive != nil {
		if url, err := p.archiveResults(job.ID); err != nil {
			log.Printf("Job %d: result export upload failed: %v", job.ID, err)
		} else {
			log.Printf("Job %d: result export uploaded: %s", job.ID, url)
		}
	}

	log.Printf("Job %d: complete, saved %d rows in %d batches (%d failed), took %s",
		job.ID, savedTotal, len(batches), failedBatches, time.Since(started).Round(time.Millisecond))

	return nil
}

// archiveResults 上传完整结果 JSON 到 OSS 并回填归档地址
func (p *Pipeline) archiveResults(jobID int64) (string, error) {
	var rows []*model.OptimizationResult
	if err := p.conn.Retry(func(db *gorm.DB) error {
		list, err := repository.NewResultRepository(db).ListByJobID(jobID)
		if err != nil {
			return err
		}
		rows = list
		return nil
	}); err != nil {
		return "", fmt.Errorf("failed to load results: %w", err)
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}

	url, err := p.archive.UploadResultExport(jobID, data)
	if err != nil {
		return "", err
	}

	if err := p.conn.Retry(func(db *gorm.DB) error {
		return repository.NewJobRepository(db).SetExportURL(jobID, url)
	}); err != nil {
		log.Printf("Job %d: failed to record export url: %v", jobID, err)
	}

	return url, nil
}

// snapshotRow 任务记录里保留的结果快照行
type snapshotRow struct {
	ItemID       int64    `json:"item_id"`
	EOQ          *float64 `json:"eoq"`
	ReorderPoint *float64 `json:"reorder_point"`
	SafetyStock  *float64 `json:"safety_stock"`
}

// splitBatches 按批次大小顺序切分快照
func splitBatches(snaps []*catalog.Snapshot, size int) [][]*catalog.Snapshot {
	batches := make([][]*catalog.Snapshot, 0, (len(snaps)+size-1)/size)
	for start := 0; start < len(snaps); start += size {
		end := start + size
		if end > len(snaps) {
			end = len(snaps)
		}
		batches = append(batches, snaps[start:end])
	}
	return batches
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) > max {
		runes = runes[:max]
	}
	return string(runes)
}
