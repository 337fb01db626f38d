package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/stockopt_go_server/internal/api/middleware"
	"github.com/qs3c/stockopt_go_server/internal/model/dto"
	"github.com/qs3c/stockopt_go_server/internal/pkg/response"
	"github.com/qs3c/stockopt_go_server/internal/service"
)

type StockHandler struct {
	stockService *service.StockService
}

func NewStockHandler(stockService *service.StockService) *StockHandler {
	return &StockHandler{
		stockService: stockService,
	}
}

// RecordMovement 记录库存变动
// POST /api/v1/stock/movements
func (h *StockHandler) RecordMovement(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	movement, err := h.stockService.RecordMovement(userID, &req)
	if err != nil {
		switch err {
		case service.ErrItemNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrInsufficientStock:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "已记录", movement)
}

// ListMovements 获取库存变动记录
// GET /api/v1/stock/movements
func (h *StockHandler) ListMovements(c *gin.Context) {
	page, pageSize := parsePagination(c)
	itemID, _ := strconv.ParseInt(c.Query("item_id"), 10, 64)
	movementType := c.Query("type")

	rows, total, err := h.stockService.ListMovements(page, pageSize, itemID, movementType)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, rows)
}
