package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/stockopt_go_server/config"
	"github.com/qs3c/stockopt_go_server/internal/api"
	"github.com/qs3c/stockopt_go_server/internal/api/handler"
	"github.com/qs3c/stockopt_go_server/internal/database"
	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/pkg/cron"
	"github.com/qs3c/stockopt_go_server/internal/pkg/email"
	"github.com/qs3c/stockopt_go_server/internal/pkg/metrics"
	"github.com/qs3c/stockopt_go_server/internal/pkg/pubsub"
	"github.com/qs3c/stockopt_go_server/internal/pkg/queue"
	"github.com/qs3c/stockopt_go_server/internal/pkg/ws"
	"github.com/qs3c/stockopt_go_server/internal/repository"
	"github.com/qs3c/stockopt_go_server/internal/service"
)

func main() {
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
		log.Println("Database migrated")
	}

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 Queue 和 Pub/Sub
	jobQueue := queue.NewQueue(rdb, cfg.Queue.JobQueue)
	publisher := pubsub.NewPublisher(rdb)

	// 队列深度指标，抓取时现查
	metrics.RegisterQueueDepth(func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := jobQueue.Length(ctx)
		if err != nil {
			return 0
		}
		return float64(n)
	})

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// 初始化邮件服务（可选）
	var mailer *email.Service
	if cfg.Email.SMTPHost != "" {
		mailer = email.NewService(&cfg.Email)
		log.Println("Email service initialized")
	}

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	jobRepo := repository.NewJobRepository(db)
	resultRepo := repository.NewResultRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, mailer, cfg)
	userService := service.NewUserService(userRepo)
	itemService := service.NewItemService(itemRepo, supplierRepo, warehouseRepo)
	supplierService := service.NewSupplierService(supplierRepo)
	warehouseService := service.NewWarehouseService(warehouseRepo)
	stockService := service.NewStockService(db)
	reportService := service.NewReportService(itemRepo, supplierRepo, movementRepo)
	optimizeService := service.NewOptimizeService(jobRepo, resultRepo, itemRepo, jobQueue, publisher)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	itemHandler := handler.NewItemHandler(itemService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	warehouseHandler := handler.NewWarehouseHandler(warehouseService)
	stockHandler := handler.NewStockHandler(stockService)
	reportHandler := handler.NewReportHandler(reportService)
	optimizeHandler := handler.NewOptimizeHandler(optimizeService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 订阅任务进度并转发给对应用户的 WebSocket 连接
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(msg *pubsub.ProgressMessage) {
			event := &dto.JobProgressEvent{
				JobID:          msg.JobID,
				Status:         msg.Status,
				ItemsTotal:     msg.ItemsTotal,
				ItemsProcessed: msg.ItemsProcessed,
				Progress:       msg.Progress,
				Message:        msg.Message,
				ErrorMessage:   msg.Error,
			}
			if err := wsHub.SendToUser(msg.UserID, &ws.Message{Type: msg.Type, Data: event}); err != nil {
				log.Printf("Failed to push progress for job %d: %v", msg.JobID, err)
			}
		})
		if err != nil {
			log.Printf("Progress subscriber stopped: %v", err)
		}
	}()
	log.Println("Progress subscriber started")

	// 定时任务：超时任务清理 + 低库存告警
	conn := database.NewConn(db, func() (*gorm.DB, error) {
		return database.NewMySQL(&cfg.Database)
	}, cfg.Database.ReconnectRetries)
	cronService := cron.NewService(conn, mailer, cfg.Alerts)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		itemHandler,
		supplierHandler,
		warehouseHandler,
		stockHandler,
		reportHandler,
		optimizeHandler,
		websocketHandler,
		authService,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
