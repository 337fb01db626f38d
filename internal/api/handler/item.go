package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/pkg/response"
	"github.com/qs3c/stockopt_go_server/internal/service"
)

type ItemHandler struct {
	itemService *service.ItemService
}

func NewItemHandler(itemService *service.ItemService) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
	}
}

// Create 创建物料
// POST /api/v1/items
func (h *ItemHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.itemService.Create(&req)
	if err != nil {
		switch err {
		case service.ErrSKUExists:
			response.ParamError(c, err.Error())
		case service.ErrSupplierNotFound, service.ErrWarehouseNotFound:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "创建成功", item)
}

// Get 获取物料详情
// GET /api/v1/items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的物料ID")
		return
	}

	item, err := h.itemService.Get(id)
	if err != nil {
		if err == service.ErrItemNotFound {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, item)
}

// Update 更新物料
// PUT /api/v1/items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的物料ID")
		return
	}

	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.itemService.Update(id, &req)
	if err != nil {
		switch err {
		case service.ErrItemNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrSupplierNotFound, service.ErrWarehouseNotFound:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "更新成功", item)
}

// Deactivate 停用物料
// DELETE /api/v1/items/:id
func (h *ItemHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的物料ID")
		return
	}

	if err := h.itemService.Deactivate(id); err != nil {
		if err == service.ErrItemNotFound {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "物料已停用", nil)
}

// List 获取物料列表
// GET /api/v1/items
func (h *ItemHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)
	search := c.Query("search")
	activeOnly := c.DefaultQuery("active_only", "false") == "true"

	items, total, err := h.itemService.List(page, pageSize, search, activeOnly)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}
