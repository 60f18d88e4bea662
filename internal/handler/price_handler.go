package handler

import (
	"net/http"

	"github.com/yourorg/kap-news/internal/service"
	"github.com/yourorg/kap-news/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PriceHandler handles price-related HTTP requests
type PriceHandler struct {
	priceService *service.PriceService
	logger       *zap.Logger
}

// NewPriceHandler creates a new price handler
func NewPriceHandler(priceService *service.PriceService, logger *zap.Logger) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
		logger:       logger,
	}
}

// GetPrices handles every stock price snapshot
// GET /api/prices
func (h *PriceHandler) GetPrices(c *gin.Context) {
	items, err := h.priceService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list prices", zap.Error(err))
		utils.SendDegradedList(c)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetByTicker handles a single stock price
// GET /api/prices/ticker/{ticker}
func (h *PriceHandler) GetByTicker(c *gin.Context) {
	ticker := c.Param("ticker")

	item, err := h.priceService.GetByTicker(c.Request.Context(), ticker)
	if err != nil {
		h.logger.Error("Failed to get price", zap.Error(err), zap.String("ticker", ticker))
		utils.SendErrorResponse(c, http.StatusServiceUnavailable, "Price store unavailable")
		return
	}
	if item == nil {
		utils.SendErrorResponse(c, http.StatusNotFound, "Price not found")
		return
	}

	c.JSON(http.StatusOK, item)
}

// GetSummary handles the rising/falling/neutral market breadth
// GET /api/prices/summary
func (h *PriceHandler) GetSummary(c *gin.Context) {
	summary, err := h.priceService.Summary(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build market summary", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusServiceUnavailable, "Price store unavailable")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetIndices handles every market index snapshot
// GET /api/prices/indices
func (h *PriceHandler) GetIndices(c *gin.Context) {
	items, err := h.priceService.ListIndices(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list indices", zap.Error(err))
		utils.SendDegradedList(c)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetIndex handles a single market index
// GET /api/prices/indices/{code}
func (h *PriceHandler) GetIndex(c *gin.Context) {
	code := c.Param("code")

	item, err := h.priceService.GetIndex(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("Failed to get index", zap.Error(err), zap.String("code", code))
		utils.SendErrorResponse(c, http.StatusServiceUnavailable, "Price store unavailable")
		return
	}
	if item == nil {
		utils.SendErrorResponse(c, http.StatusNotFound, "Index not found")
		return
	}

	c.JSON(http.StatusOK, item)
}
