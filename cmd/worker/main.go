package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/config"
	"github.com/qs3c/stockopt_go_server/internal/catalog"
	"github.com/qs3c/stockopt_go_server/internal/database"
	"github.com/qs3c/stockopt_go_server/internal/optimizer"
	"github.com/qs3c/stockopt_go_server/internal/pkg/oss"
	"github.com/qs3c/stockopt_go_server/internal/pkg/pubsub"
	"github.com/qs3c/stockopt_go_server/internal/pkg/queue"
	"github.com/qs3c/stockopt_go_server/internal/worker"
)

func main() {
	once := flag.Bool("once", true, "claim and run a single job, then exit")
	loop := flag.Bool("loop", false, "keep consuming jobs until interrupted")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	conn := database.NewConn(db, func() (*gorm.DB, error) {
		return database.NewMySQL(&cfg.Database)
	}, cfg.Database.ReconnectRetries)

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 OSS（可选）
	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	// 初始化 Queue 和 Pub/Sub
	jobQueue := queue.NewQueue(rdb, cfg.Queue.JobQueue)
	publisher := pubsub.NewPublisher(rdb)

	// 每个进程一个运行器标识，任务认领记录归属
	runnerID := uuid.NewString()
	pipeline := worker.NewPipeline(
		conn,
		catalog.NewStore(conn),
		optimizer.NewClient(cfg.Optimizer.BaseURL, cfg.Optimizer.OptimizePath, cfg.Optimizer.OptimizeTimeout()),
		ossClient,
		publisher,
		cfg,
		runnerID,
	)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	log.Printf("Worker started, runner: %s", runnerID)

	if *loop {
		runLoop(ctx, jobQueue, pipeline, cfg)
		log.Println("Worker shutdown complete")
		return
	}
	if *once {
		runOnce(ctx, jobQueue, pipeline)
	}
}

// runOnce 认领一个任务执行后退出，没有任务可领也算正常结束
func runOnce(ctx context.Context, jobQueue *queue.Queue, pipeline *worker.Pipeline) {
	msg, err := jobQueue.Pop(ctx, 2*time.Second)
	if err != nil {
		log.Printf("Failed to pop job message: %v", err)
	}

	if msg != nil {
		claimed, err := pipeline.ClaimByID(ctx, msg.JobID)
		if err != nil {
			log.Printf("Job %d: %v", msg.JobID, err)
			return
		}
		if claimed {
			return
		}
		log.Printf("Job %d: already claimed elsewhere, trying oldest pending", msg.JobID)
	}

	claimed, err := pipeline.ClaimNext(ctx)
	if err != nil {
		log.Printf("Failed to run pending job: %v", err)
		return
	}
	if !claimed {
		log.Println("No pending jobs to claim")
	}
}

// runLoop 持续消费队列，空转时按 poll_seconds 周期兜底扫描 pending 任务，
// 把入队失败的任务也捡起来
func runLoop(ctx context.Context, jobQueue *queue.Queue, pipeline *worker.Pipeline, cfg *config.Config) {
	pollInterval := time.Duration(cfg.Queue.PollSeconds) * time.Second
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}

	var lastSweep time.Time
	for {
		if ctx.Err() != nil {
			return
		}

		msg, err := jobQueue.Pop(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Failed to pop job message: %v", err)
			time.Sleep(time.Second)
			continue
		}

		if msg != nil {
			claimed, err := pipeline.ClaimByID(ctx, msg.JobID)
			if err != nil {
				log.Printf("Job %d: %v", msg.JobID, err)
			} else if !claimed {
				log.Printf("Job %d: already claimed elsewhere", msg.JobID)
			}
			continue
		}

		if time.Since(lastSweep) >= pollInterval {
			sweepPending(ctx, pipeline)
			lastSweep = time.Now()
		}
	}
}

// sweepPending 逐个认领并执行积压的 pending 任务，直到没有可领的为止
func sweepPending(ctx context.Context, pipeline *worker.Pipeline) {
	for {
		if ctx.Err() != nil {
			return
		}
		claimed, err := pipeline.ClaimNext(ctx)
		if err != nil {
			log.Printf("Pending sweep: %v", err)
			return
		}
		if !claimed {
			return
		}
	}
}
