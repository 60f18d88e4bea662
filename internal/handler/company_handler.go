package handler

import (
	"net/http"
	"strings"

	"github.com/yourorg/kap-news/internal/service"
	"github.com/yourorg/kap-news/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CompanyHandler handles company detail requests
type CompanyHandler struct {
	companyService *service.CompanyService
	logger         *zap.Logger
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companyService *service.CompanyService, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		logger:         logger,
	}
}

// GetCompany handles the name and financials of a company
// GET /api/company/{symbol}
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	symbol := c.Param("symbol")
	if strings.TrimSpace(symbol) == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Symbol cannot be empty")
		return
	}

	details, err := h.companyService.GetDetails(c.Request.Context(), symbol)
	if err != nil {
		h.logger.Error("Failed to get company details", zap.Error(err), zap.String("symbol", symbol))
		utils.SendErrorResponse(c, http.StatusServiceUnavailable, "Company data unavailable")
		return
	}

	c.JSON(http.StatusOK, details)
}
