package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/stockopt_go_server/internal/api/middleware"
	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/pkg/response"
	"github.com/qs3c/stockopt_go_server/internal/service"
)

type OptimizeHandler struct {
	optimizeService *service.OptimizeService
}

func NewOptimizeHandler(optimizeService *service.OptimizeService) *OptimizeHandler {
	return &OptimizeHandler{
		optimizeService: optimizeService,
	}
}

// requester 取当前用户 ID 和角色，任一缺失视为未认证
func requester(c *gin.Context) (int64, string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return 0, "", false
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		return 0, "", false
	}
	return userID, role, true
}

// Create 创建优化任务
// POST /api/v1/optimization/jobs
func (h *OptimizeHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateOptimizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.optimizeService.CreateJob(userID, &req)
	if err != nil {
		response.ServerError(c, "任务创建失败")
		return
	}

	response.SuccessWithMessage(c, "任务已创建", resp)
}

// Get 获取任务状态
// GET /api/v1/optimization/jobs/:id
func (h *OptimizeHandler) Get(c *gin.Context) {
	userID, role, ok := requester(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的任务ID")
		return
	}

	job, err := h.optimizeService.GetJob(userID, role, jobID)
	if err != nil {
		switch err {
		case service.ErrJobNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrJobAccessDenied:
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, job)
}

// Latest 获取最近一次任务的状态
// GET /api/v1/optimization/jobs/latest
func (h *OptimizeHandler) Latest(c *gin.Context) {
	userID, role, ok := requester(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	job, err := h.optimizeService.LatestJob(userID, role)
	if err != nil {
		if err == service.ErrJobNotFound {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, job)
}

// List 获取任务列表
// GET /api/v1/optimization/jobs
func (h *OptimizeHandler) List(c *gin.Context) {
	userID, role, ok := requester(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, pageSize := parsePagination(c)
	status := c.Query("status")

	jobs, total, err := h.optimizeService.ListJobs(userID, role, page, pageSize, status)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, jobs)
}

// Results 分页获取任务结果
// GET /api/v1/optimization/jobs/:id/results
func (h *OptimizeHandler) Results(c *gin.Context) {
	userID, role, ok := requester(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的任务ID")
		return
	}

	page, pageSize := parsePagination(c)

	rows, total, err := h.optimizeService.GetResults(userID, role, jobID, page, pageSize)
	if err != nil {
		switch err {
		case service.ErrJobNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrJobAccessDenied:
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessPage(c, total, page, pageSize, rows)
}
