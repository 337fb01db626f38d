package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/config"
	"github.com/qs3c/stockopt_go_server/internal/catalog"
	"github.com/qs3c/stockopt_go_server/internal/database"
	"github.com/qs3c/stockopt_go_server/internal/model"
	"github.com/qs3c/stockopt_go_server/internal/optimizer"
	"github.com/qs3c/stockopt_go_server/internal/pkg/pubsub"
	"github.com/qs3c/stockopt_go_server/internal/repository"
	"github.com/qs3c/stockopt_go_server/internal/testutil"
)

// fakeEngine 模拟优化引擎。按请求序号（从 1 计）注入失败或无效行。
type fakeEngine struct {
	mu       sync.Mutex
	requests []*optimizer.BatchRequest
	failOn   map[int]bool
	noIDOn   map[int]bool
}

func (f *fakeEngine) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req optimizer.BatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.requests = append(f.requests, &req)
		n := len(f.requests)
		f.mu.Unlock()

		if f.failOn[n] {
			http.Error(w, "engine unavailable", http.StatusInternalServerError)
			return
		}

		type outRow struct {
			ItemID       int64   `json:"item_id,omitempty"`
			EOQ          float64 `json:"eoq"`
			ReorderPoint float64 `json:"reorder_point"`
			SafetyStock  float64 `json:"safety_stock"`
		}
		rows := make([]outRow, 0, len(req.Items))
		for _, item := range req.Items {
			row := outRow{
				EOQ:          float64(item.ItemID) * 10,
				ReorderPoint: float64(item.ItemID) * 5,
				SafetyStock:  3,
			}
			if !f.noIDOn[n] {
				row.ItemID = item.ItemID
			}
			rows = append(rows, row)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"results": rows})
	}
}

func (f *fakeEngine) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func setupPipeline(t *testing.T, engine *fakeEngine, batchSize int) (*Pipeline, *gorm.DB, *redis.Client, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	conn := database.NewConn(db, func() (*gorm.DB, error) { return db, nil }, 2)

	srv := httptest.NewServer(engine.handler())

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{}
	cfg.Optimizer.BatchSize = batchSize
	cfg.Optimizer.SnapshotLimit = 1000

	p := NewPipeline(
		conn,
		catalog.NewStore(conn),
		optimizer.NewClient(srv.URL, "/optimize", 5*time.Second),
		nil,
		pubsub.NewPublisher(rdb),
		cfg,
		"test-runner",
	)

	cleanup := func() {
		srv.Close()
		rdb.Close()
		mr.Close()
		testutil.CleanupTestDB(t, db)
	}

	return p, db, rdb, cleanup
}

func TestPipeline_ExecuteCompletesJob(t *testing.T) {
	engine := &fakeEngine{}
	p, db, _, cleanup := setupPipeline(t, engine, 2)
	defer cleanup()

	user := testutil.TestUser(t, db)
	items := []*model.Item{
		testutil.TestItem(t, db),
		testutil.TestItem(t, db),
		testutil.TestItem(t, db),
	}
	job := testutil.TestJob(t, db, user.ID, "running", testutil.WithItemsTotal(3))

	err := p.Execute(context.Background(), job)
	require.NoError(t, err)

	updated, err := repository.NewJobRepository(db).GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, "complete", updated.Status)
	assert.Equal(t, 3, updated.ItemsProcessed)
	require.NotNil(t, updated.CompletedAt)

	// 结果行按物料落库
	results, err := repository.NewResultRepository(db).ListByJobID(job.ID)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, items[0].ID, results[0].ItemID)
	require.NotNil(t, results[0].EOQ)
	assert.Equal(t, float64(items[0].ID)*10, *results[0].EOQ)

	// 任务记录里保留快照
	var snapRows []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(updated.ResultSnapshot), &snapRows))
	assert.Len(t, snapRows, 3)

	// 引擎收到两批，任务参数透传
	require.Equal(t, 2, engine.requestCount())
	first := engine.requests[0]
	assert.Equal(t, job.ID, first.JobID)
	assert.Equal(t, 90, first.HorizonDays)
	assert.Equal(t, 0.95, first.ServiceLevel)
	require.Len(t, first.Items, 2)
	assert.Equal(t, items[0].ID, first.Items[0].ItemID)
	assert.Equal(t, 5.0, first.Items[0].AvgDailyDemand)
	assert.Equal(t, 50.0, first.Items[0].OrderCost)
	assert.Len(t, engine.requests[1].Items, 1)

	// 算出的字段回写到物料表
	var item model.Item
	require.NoError(t, db.First(&item, items[0].ID).Error)
	assert.Equal(t, float64(items[0].ID)*10, item.EOQ)
	assert.Equal(t, float64(items[0].ID)*5, item.ReorderPoint)
}

func TestPipeline_PartialBatchFailureStillCompletes(t *testing.T) {
	engine := &fakeEngine{failOn: map[int]bool{2: true}}
	p, db, _, cleanup := setupPipeline(t, engine, 1)
	defer cleanup()

	user := testutil.TestUser(t, db)
	items := []*model.Item{
		testutil.TestItem(t, db),
		testutil.TestItem(t, db),
		testutil.TestItem(t, db),
	}
	job := testutil.TestJob(t, db, user.ID, "running", testutil.WithItemsTotal(3))

	err := p.Execute(context.Background(), job)
	require.NoError(t, err)

	updated, err := repository.NewJobRepository(db).GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, "complete", updated.Status)
	assert.Equal(t, 2, updated.ItemsProcessed)

	results, err := repository.NewResultRepository(db).ListByJobID(job.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, items[0].ID, results[0].ItemID)
	assert.Equal(t, items[2].ID, results[1].ItemID)
}

func TestPipeline_AllBatchesFail(t *testing.T) {
	engine := &fakeEngine{failOn: map[int]bool{1: true, 2: true}}
	p, db, _, cleanup := setupPipeline(t, engine, 2)
	defer cleanup()

	user := testutil.TestUser(t, db)
	testutil.TestItem(t, db)
	testutil.TestItem(t, db)
	testutil.TestItem(t, db)
	job := testutil.TestJob(t, db, user.ID, "running", testutil.WithItemsTotal(3))

	err := p.Execute(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "所有批次均失败")

	updated, dbErr := repository.NewJobRepository(db).GetByID(job.ID)
	require.NoError(t, dbErr)
	assert.Equal(t, "failed", updated.Status)
	assert.NotEmpty(t, updated.ErrorMessage)
	assert.Equal(t, 0, updated.ItemsProcessed)
	require.NotNil(t, updated.CompletedAt)

	count, dbErr := repository.NewResultRepository(db).CountByJobID(job.ID)
	require.NoError(t, dbErr)
	assert.Equal(t, int64(0), count)
}

func TestPipeline_EmptyCatalogFails(t *testing.T) {
	engine := &fakeEngine{}
	p, db, _, cleanup := setupPipeline(t, engine, 2)
	defer cleanup()

	user := testutil.TestUser(t, db)
	testutil.TestItem(t, db, testutil.WithInactive())
	job := testutil.TestJob(t, db, user.ID, "running", testutil.WithItemsTotal(0))

	err := p.Execute(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "没有可优化的物料")

	updated, dbErr := repository.NewJobRepository(db).GetByID(job.ID)
	require.NoError(t, dbErr)
	assert.Equal(t, "failed", updated.Status)

	// 引擎从未被调用
	assert.Equal(t, 0, engine.requestCount())
}

func TestPipeline_BatchWithoutUsableRows(t *testing.T) {
	engine := &fakeEngine{noIDOn: map[int]bool{1: true}}
	p, db, _, cleanup := setupPipeline(t, engine, 1)
	defer cleanup()

	user := testutil.TestUser(t, db)
	testutil.TestItem(t, db)
	second := testutil.TestItem(t, db)
	job := testutil.TestJob(t, db, user.ID, "running", testutil.WithItemsTotal(2))

	err := p.Execute(context.Background(), job)
	require.NoError(t, err)

	// 第一批整批没有可用行，按失败批处理，第二批照常落库
	updated, dbErr := repository.NewJobRepository(db).GetByID(job.ID)
	require.NoError(t, dbErr)
	assert.Equal(t, "complete", updated.Status)
	assert.Equal(t, 1, updated.ItemsProcessed)

	results, dbErr := repository.NewResultRepository(db).ListByJobID(job.ID)
	require.NoError(t, dbErr)
	require.Len(t, results, 1)
	assert.Equal(t, second.ID, results[0].ItemID)
}

func TestPipeline_ClaimNext(t *testing.T) {
	engine := &fakeEngine{}
	p, db, _, cleanup := setupPipeline(t, engine, 10)
	defer cleanup()

	user := testutil.TestUser(t, db)
	testutil.TestItem(t, db)
	older := testutil.TestJob(t, db, user.ID, "pending", testutil.WithItemsTotal(1))
	newer := testutil.TestJob(t, db, user.ID, "pending", testutil.WithItemsTotal(1))

	ctx := context.Background()

	ran, err := p.ClaimNext(ctx)
	require.NoError(t, err)
	assert.True(t, ran)

	repo := repository.NewJobRepository(db)
	first, err := repo.GetByID(older.ID)
	require.NoError(t, err)
	assert.Equal(t, "complete", first.Status)
	require.NotNil(t, first.ClaimedBy)
	assert.Equal(t, "test-runner", *first.ClaimedBy)

	second, err := repo.GetByID(newer.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", second.Status)

	ran, err = p.ClaimNext(ctx)
	require.NoError(t, err)
	assert.True(t, ran)

	second, err = repo.GetByID(newer.ID)
	require.NoError(t, err)
	assert.Equal(t, "complete", second.Status)

	// 队列空了
	ran, err = p.ClaimNext(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestPipeline_ClaimByID(t *testing.T) {
	engine := &fakeEngine{}
	p, db, _, cleanup := setupPipeline(t, engine, 10)
	defer cleanup()

	user := testutil.TestUser(t, db)
	testutil.TestItem(t, db)
	job := testutil.TestJob(t, db, user.ID, "pending", testutil.WithItemsTotal(1))

	ctx := context.Background()

	ran, err := p.ClaimByID(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, ran)

	updated, err := repository.NewJobRepository(db).GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, "complete", updated.Status)

	// 终态任务不能再次认领
	ran, err = p.ClaimByID(ctx, job.ID)
	require.NoError(t, err)
	assert.False(t, ran)

	// 不存在的任务
	ran, err = p.ClaimByID(ctx, 99999)
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestPipeline_PublishesMonotonicProgress(t *testing.T) {
	engine := &fakeEngine{}
	p, db, rdb, cleanup := setupPipeline(t, engine, 1)
	defer cleanup()

	user := testutil.TestUser(t, db)
	testutil.TestItem(t, db)
	testutil.TestItem(t, db)
	testutil.TestItem(t, db)
	job := testutil.TestJob(t, db, user.ID, "running", testutil.WithItemsTotal(3))

	subCtx, subCancel := context.WithCancel(context.Background())
	defer subCancel()

	var mu sync.Mutex
	var received []*pubsub.ProgressMessage

	go func() {
		pubsub.NewSubscriber(rdb).Subscribe(subCtx, func(msg *pubsub.ProgressMessage) {
			mu.Lock()
			received = append(received, msg)
			mu.Unlock()
		})
	}()

	// 等订阅建立
	time.Sleep(100 * time.Millisecond)

	err := p.Execute(context.Background(), job)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) > 0 && received[len(received)-1].Status == "complete"
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	// 已处理数只增不减，收尾消息带满进度
	prev := 0
	for _, msg := range received {
		assert.GreaterOrEqual(t, msg.ItemsProcessed, prev)
		assert.LessOrEqual(t, msg.ItemsProcessed, msg.ItemsTotal)
		prev = msg.ItemsProcessed
	}
	last := received[len(received)-1]
	assert.Equal(t, 3, last.ItemsProcessed)
	assert.Equal(t, 100, last.Progress)
	assert.Equal(t, job.ID, last.JobID)
	assert.Equal(t, user.ID, last.UserID)
}

func TestSplitBatches(t *testing.T) {
	snaps := make([]*catalog.Snapshot, 5)
	for i := range snaps {
		snaps[i] = &catalog.Snapshot{ItemID: int64(i + 1)}
	}

	batches := splitBatches(snaps, 2)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 2)
	assert.Len(t, batches[2], 1)
	assert.Equal(t, int64(1), batches[0][0].ItemID)
	assert.Equal(t, int64(5), batches[2][0].ItemID)

	// 单批装下全部
	batches = splitBatches(snaps, 10)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 5)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 500))

	long := ""
	for i := 0; i < 200; i++ {
		long += "优化失败"
	}
	cut := truncate(long, 500)
	assert.LessOrEqual(t, len([]rune(cut)), 500)

	// 截断不会把多字节字符切坏
	for _, r := range cut {
		assert.NotEqual(t, '�', r)
	}
}
