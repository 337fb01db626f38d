package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/pkg/response"
	"github.com/qs3c/stockopt_go_server/internal/service"
)

type SupplierHandler struct {
	supplierService *service.SupplierService
}

func NewSupplierHandler(supplierService *service.SupplierService) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplierService,
	}
}

// Create 创建供应商
// POST /api/v1/suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	supplier, err := h.supplierService.Create(&req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "创建成功", supplier)
}

// Get 获取供应商详情
// GET /api/v1/suppliers/:id
func (h *SupplierHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的供应商ID")
		return
	}

	supplier, err := h.supplierService.Get(id)
	if err != nil {
		if err == service.ErrSupplierNotFound {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, supplier)
}

// Update 更新供应商
// PUT /api/v1/suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的供应商ID")
		return
	}

	var req dto.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	supplier, err := h.supplierService.Update(id, &req)
	if err != nil {
		if err == service.ErrSupplierNotFound {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "更新成功", supplier)
}

// Delete 删除供应商
// DELETE /api/v1/suppliers/:id
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的供应商ID")
		return
	}

	if err := h.supplierService.Delete(id); err != nil {
		switch err {
		case service.ErrSupplierNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrSupplierHasItems:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// List 获取供应商列表
// GET /api/v1/suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)
	search := c.Query("search")

	suppliers, total, err := h.supplierService.List(page, pageSize, search)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, suppliers)
}
