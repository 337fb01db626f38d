package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/pkg/response"
	"github.com/qs3c/stockopt_go_server/internal/service"
)

type WarehouseHandler struct {
	warehouseService *service.WarehouseService
}

func NewWarehouseHandler(warehouseService *service.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{
		warehouseService: warehouseService,
	}
}

// Create 创建仓库
// POST /api/v1/warehouses
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	warehouse, err := h.warehouseService.Create(&req)
	if err != nil {
		if err == service.ErrWarehouseCodeExists {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "创建成功", warehouse)
}

// Get 获取仓库详情
// GET /api/v1/warehouses/:id
func (h *WarehouseHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的仓库ID")
		return
	}

	warehouse, err := h.warehouseService.Get(id)
	if err != nil {
		if err == service.ErrWarehouseNotFound {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, warehouse)
}

// Update 更新仓库
// PUT /api/v1/warehouses/:id
func (h *WarehouseHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的仓库ID")
		return
	}

	var req dto.UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	warehouse, err := h.warehouseService.Update(id, &req)
	if err != nil {
		if err == service.ErrWarehouseNotFound {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "更新成功", warehouse)
}

// Delete 删除仓库
// DELETE /api/v1/warehouses/:id
func (h *WarehouseHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的仓库ID")
		return
	}

	if err := h.warehouseService.Delete(id); err != nil {
		switch err {
		case service.ErrWarehouseNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrWarehouseHasItems:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// List 获取仓库列表
// GET /api/v1/warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	warehouses, total, err := h.warehouseService.List(page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, warehouses)
}
