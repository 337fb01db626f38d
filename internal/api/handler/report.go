package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/stockopt_go_server/internal/pkg/response"
	"github.com/qs3c/stockopt_go_server/internal/service"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// StockSummary 库存总览
// GET /api/v1/reports/summary
func (h *ReportHandler) StockSummary(c *gin.Context) {
	report, err := h.reportService.StockSummary()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, report)
}

// LowStock 低库存清单
// GET /api/v1/reports/low-stock
func (h *ReportHandler) LowStock(c *gin.Context) {
	rows, err := h.reportService.LowStock()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{
		"items": rows,
		"count": len(rows),
	})
}

// Valuation 库存货值报表，默认按仓库聚合，group=category 时按分类聚合
// GET /api/v1/reports/valuation?group=warehouse|category
func (h *ReportHandler) Valuation(c *gin.Context) {
	if c.DefaultQuery("group", "warehouse") == "category" {
		rows, err := h.reportService.ValuationByCategory()
		if err != nil {
			response.ServerError(c, "")
			return
		}
		response.Success(c, gin.H{
			"categories": rows,
		})
		return
	}

	rows, err := h.reportService.Valuation()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{
		"warehouses": rows,
	})
}

// MovementSummary 出入库汇总
// GET /api/v1/reports/movements?days=30
func (h *ReportHandler) MovementSummary(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days < 1 || days > 365 {
		days = 30
	}

	rows, err := h.reportService.MovementSummary(days)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{
		"days": days,
		"rows": rows,
	})
}
