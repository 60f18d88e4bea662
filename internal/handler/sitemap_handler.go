package handler

import (
	"net/http"

	"github.com/yourorg/kap-news/internal/service"
	"github.com/yourorg/kap-news/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SitemapHandler serves the sitemap
type SitemapHandler struct {
	sitemapService *service.SitemapService
	logger         *zap.Logger
}

// NewSitemapHandler creates a new sitemap handler
func NewSitemapHandler(sitemapService *service.SitemapService, logger *zap.Logger) *SitemapHandler {
	return &SitemapHandler{
		sitemapService: sitemapService,
		logger:         logger,
	}
}

// GetSitemap handles the sitemap document
// GET /sitemap.xml
func (h *SitemapHandler) GetSitemap(c *gin.Context) {
	doc, err := h.sitemapService.Render(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to render sitemap", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to render sitemap")
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", doc)
}
