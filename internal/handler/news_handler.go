package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/yourorg/kap-news/internal/service"
	"github.com/yourorg/kap-news/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewsHandler handles news-related HTTP requests
type NewsHandler struct {
	newsService *service.NewsService
	logger      *zap.Logger
}

// NewNewsHandler creates a new news handler
func NewNewsHandler(newsService *service.NewsService, logger *zap.Logger) *NewsHandler {
	return &NewsHandler{
		newsService: newsService,
		logger:      logger,
	}
}

type dateRangeQuery struct {
	From string `form:"from" binding:"required,isodate"`
	To   string `form:"to" binding:"required,isodate"`
}

// GetNews handles one page of news
// GET /api/news?page=1&pageSize=20
func (h *NewsHandler) GetNews(c *gin.Context) {
	params := utils.ParsePaginationParams(c)

	page, err := h.newsService.List(c.Request.Context(), params.Page, params.PageSize)
	if err != nil {
		h.logger.Error("Failed to list news", zap.Error(err))
		utils.SendDegradedList(c)
		return
	}

	utils.SetPaginationHeaders(c, page.Total, page.Page, page.PageSize)
	c.JSON(http.StatusOK, page.Items)
}

// GetLatest handles the most recent news
// GET /api/news/latest?count=10
func (h *NewsHandler) GetLatest(c *gin.Context) {
	count, _ := strconv.Atoi(c.Query("count"))

	items, err := h.newsService.ListLatest(c.Request.Context(), count)
	if err != nil {
		h.logger.Error("Failed to list latest news", zap.Error(err))
		utils.SendDegradedList(c)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetToday handles today's news
// GET /api/news/today
func (h *NewsHandler) GetToday(c *gin.Context) {
	items, err := h.newsService.ListToday(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list today's news", zap.Error(err))
		utils.SendDegradedList(c)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetByDate handles news of a single day
// GET /api/news/date/{YYYY-MM-DD}
func (h *NewsHandler) GetByDate(c *gin.Context) {
	date := c.Param("date")
	if !utils.IsISODate(date) {
		utils.SendErrorResponse(c, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
		return
	}

	items, err := h.newsService.ListByDate(c.Request.Context(), date)
	if err != nil {
		h.logger.Error("Failed to list news by date", zap.Error(err), zap.String("date", date))
		utils.SendDegradedList(c)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetByDateRange handles news between two dates, both inclusive
// GET /api/news/range?from=2026-01-01&to=2026-01-06
func (h *NewsHandler) GetByDateRange(c *gin.Context) {
	var query dateRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "'from' and 'to' are required and must be formatted as YYYY-MM-DD")
		return
	}

	items, err := h.newsService.ListByDateRange(c.Request.Context(), query.From, query.To)
	if err != nil {
		h.logger.Error("Failed to list news by range",
			zap.Error(err),
			zap.String("from", query.From),
			zap.String("to", query.To))
		utils.SendDegradedList(c)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetByTicker handles one page of news for a ticker
// GET /api/news/ticker/{ticker}?page=1&pageSize=20
func (h *NewsHandler) GetByTicker(c *gin.Context) {
	ticker := c.Param("ticker")
	if strings.TrimSpace(ticker) == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "ticker is required")
		return
	}
	params := utils.ParsePaginationParams(c)

	page, err := h.newsService.ListByTicker(c.Request.Context(), ticker, params.Page, params.PageSize)
	if err != nil {
		h.logger.Error("Failed to list news by ticker", zap.Error(err), zap.String("ticker", ticker))
		utils.SendDegradedList(c)
		return
	}

	utils.SetPaginationHeaders(c, page.Total, page.Page, page.PageSize)
	c.Header("X-Ticker", page.Ticker)
	c.JSON(http.StatusOK, page.Items)
}

// GetCount handles the total or per-ticker news count
// GET /api/news/count?ticker=ASELS
func (h *NewsHandler) GetCount(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Query("ticker")))

	count, err := h.newsService.Count(c.Request.Context(), ticker)
	if err != nil {
		h.logger.Error("Failed to count news", zap.Error(err), zap.String("ticker", ticker))
		utils.SendErrorResponse(c, http.StatusServiceUnavailable, "News store unavailable")
		return
	}

	if ticker != "" {
		c.JSON(http.StatusOK, gin.H{"ticker": ticker, "count": count})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// GetByID handles a single news item
// GET /api/news/{id}
func (h *NewsHandler) GetByID(c *gin.Context) {
	id := c.Param("id")

	item, err := h.newsService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get news", zap.Error(err), zap.String("id", id))
		utils.SendErrorResponse(c, http.StatusServiceUnavailable, "News store unavailable")
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "News not found"})
		return
	}

	c.JSON(http.StatusOK, item)
}
