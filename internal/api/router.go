package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/stockopt_go_server/config"
	"github.com/qs3c/stockopt_go_server/internal/api/handler"
	"github.com/qs3c/stockopt_go_server/internal/api/middleware"
	"github.com/qs3c/stockopt_go_server/internal/pkg/metrics"
	"github.com/qs3c/stockopt_go_server/internal/service"
)

type Router struct {
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	itemHandler      *handler.ItemHandler
	supplierHandler  *handler.SupplierHandler
	warehouseHandler *handler.WarehouseHandler
	stockHandler     *handler.StockHandler
	reportHandler    *handler.ReportHandler
	optimizeHandler  *handler.OptimizeHandler
	websocketHandler *handler.WebSocketHandler
	authService      *service.AuthService
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	itemHandler *handler.ItemHandler,
	supplierHandler *handler.SupplierHandler,
	warehouseHandler *handler.WarehouseHandler,
	stockHandler *handler.StockHandler,
	reportHandler *handler.ReportHandler,
	optimizeHandler *handler.OptimizeHandler,
	websocketHandler *handler.WebSocketHandler,
	authService *service.AuthService,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		userHandler:      userHandler,
		itemHandler:      itemHandler,
		supplierHandler:  supplierHandler,
		warehouseHandler: warehouseHandler,
		stockHandler:     stockHandler,
		reportHandler:    reportHandler,
		optimizeHandler:  optimizeHandler,
		websocketHandler: websocketHandler,
		authService:      authService,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	// Prometheus 指标
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := engine.Group("/api/v1")
	{
		// WebSocket，token 走查询参数
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 需要认证的接口，角色实时从库里取
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.LoadUser(r.authService))
		{
			// 个人信息
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
			}

			// 用户管理（仅管理员）
			users := authenticated.Group("/users")
			users.Use(middleware.RequireRole("admin"))
			{
				users.GET("", r.userHandler.ListUsers)
				users.PUT("/:id/role", r.userHandler.UpdateRole)
				users.PUT("/:id/active", r.userHandler.SetActive)
			}

			// 物料：读开放给所有角色，写需要 manager 以上
			items := authenticated.Group("/items")
			{
				items.GET("", r.itemHandler.List)
				items.GET("/:id", r.itemHandler.Get)
				items.POST("", middleware.RequireRole("manager", "admin"), r.itemHandler.Create)
				items.PUT("/:id", middleware.RequireRole("manager", "admin"), r.itemHandler.Update)
				items.DELETE("/:id", middleware.RequireRole("manager", "admin"), r.itemHandler.Deactivate)
			}

			// 供应商
			suppliers := authenticated.Group("/suppliers")
			{
				suppliers.GET("", r.supplierHandler.List)
				suppliers.GET("/:id", r.supplierHandler.Get)
				suppliers.POST("", middleware.RequireRole("manager", "admin"), r.supplierHandler.Create)
				suppliers.PUT("/:id", middleware.RequireRole("manager", "admin"), r.supplierHandler.Update)
				suppliers.DELETE("/:id", middleware.RequireRole("manager", "admin"), r.supplierHandler.Delete)
			}

			// 仓库
			warehouses := authenticated.Group("/warehouses")
			{
				warehouses.GET("", r.warehouseHandler.List)
				warehouses.GET("/:id", r.warehouseHandler.Get)
				warehouses.POST("", middleware.RequireRole("manager", "admin"), r.warehouseHandler.Create)
				warehouses.PUT("/:id", middleware.RequireRole("manager", "admin"), r.warehouseHandler.Update)
				warehouses.DELETE("/:id", middleware.RequireRole("manager", "admin"), r.warehouseHandler.Delete)
			}

			// 库存变动：出入库是员工的日常操作，所有角色可记录
			stock := authenticated.Group("/stock")
			{
				stock.POST("/movements", r.stockHandler.RecordMovement)
				stock.GET("/movements", r.stockHandler.ListMovements)
			}

			// 报表（manager 以上）
			reports := authenticated.Group("/reports")
			reports.Use(middleware.RequireRole("manager", "admin"))
			{
				reports.GET("/summary", r.reportHandler.StockSummary)
				reports.GET("/low-stock", r.reportHandler.LowStock)
				reports.GET("/valuation", r.reportHandler.Valuation)
				reports.GET("/movements", r.reportHandler.MovementSummary)
			}

			// 优化任务：创建需要 manager 以上，查询对所有角色开放（staff 只能看自己的）
			optimization := authenticated.Group("/optimization")
			{
				optimization.POST("/jobs", middleware.RequireRole("manager", "admin"), r.optimizeHandler.Create)
				optimization.GET("/jobs", r.optimizeHandler.List)
				optimization.GET("/jobs/latest", r.optimizeHandler.Latest)
				optimization.GET("/jobs/:id", r.optimizeHandler.Get)
				optimization.GET("/jobs/:id/results", r.optimizeHandler.Results)
			}
		}
	}

	return engine
}
