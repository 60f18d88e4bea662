package handler

import (
	"net/http"
	"strings"

	"github.com/yourorg/kap-news/internal/service"
	"github.com/yourorg/kap-news/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChartHandler handles chart HTTP requests
type ChartHandler struct {
	chartService *service.ChartService
	logger       *zap.Logger
}

// NewChartHandler creates a new chart handler
func NewChartHandler(chartService *service.ChartService, logger *zap.Logger) *ChartHandler {
	return &ChartHandler{
		chartService: chartService,
		logger:       logger,
	}
}

type chartQuery struct {
	Symbol string `form:"symbol" binding:"required"`
	Time   string `form:"time" binding:"required"`
}

func (h *ChartHandler) bindQuery(c *gin.Context) (*chartQuery, bool) {
	var query chartQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "symbol and time parameters are required")
		return nil, false
	}
	query.Symbol = strings.ToUpper(strings.TrimSpace(query.Symbol))
	return &query, true
}

// GetChart handles chart points of a symbol
// GET /api/chart/ticker?symbol=ASELS&time=1G
func (h *ChartHandler) GetChart(c *gin.Context) {
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}

	points, err := h.chartService.GetChart(c.Request.Context(), query.Symbol, query.Time)
	if err != nil {
		h.logger.Error("Failed to get chart",
			zap.Error(err),
			zap.String("symbol", query.Symbol),
			zap.String("time", query.Time))
		utils.SendDegradedList(c)
		return
	}

	c.JSON(http.StatusOK, points)
}

// GetChartImage renders the chart of a symbol as PNG
// GET /api/chart/ticker.png?symbol=ASELS&time=1A
func (h *ChartHandler) GetChartImage(c *gin.Context) {
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}

	points, err := h.chartService.GetChart(c.Request.Context(), query.Symbol, query.Time)
	if err != nil {
		h.logger.Error("Failed to get chart",
			zap.Error(err),
			zap.String("symbol", query.Symbol),
			zap.String("time", query.Time))
		utils.SendErrorResponse(c, http.StatusServiceUnavailable, "Chart data unavailable")
		return
	}
	if len(points) < 2 {
		utils.SendErrorResponse(c, http.StatusNotFound, "Not enough chart data")
		return
	}

	png, err := service.RenderChartPNG(points, query.Symbol)
	if err != nil {
		h.logger.Error("Failed to render chart", zap.Error(err), zap.String("symbol", query.Symbol))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
