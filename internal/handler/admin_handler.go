package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/yourorg/kap-news/internal/assets"
	"github.com/yourorg/kap-news/internal/events"
	"github.com/yourorg/kap-news/internal/middleware"
	"github.com/yourorg/kap-news/internal/model"
	"github.com/yourorg/kap-news/internal/proxy"
	"github.com/yourorg/kap-news/internal/service"
	"github.com/yourorg/kap-news/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// auditTimeout bounds publishing a single audit event
const auditTimeout = 5 * time.Second

// AssetReindexer rebuilds the asset index on demand
type AssetReindexer interface {
	Reindex(ctx context.Context) (*assets.Index, error)
}

// AdminHandler serves the admin panel backend
type AdminHandler struct {
	authService *service.AuthService
	proxy       *proxy.ServiceProxy
	assets      AssetReindexer
	publisher   events.Publisher
	logger      *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *service.AuthService, proxy *proxy.ServiceProxy, assets AssetReindexer, publisher events.Publisher, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		proxy:       proxy,
		assets:      assets,
		publisher:   publisher,
		logger:      logger,
	}
}

// Login handles admin login
// POST /admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var login model.AdminLogin
	if err := c.ShouldBindJSON(&login); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "username and password are required")
		return
	}

	resp, err := h.authService.Login(&login)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Warn("Admin login failed", zap.String("username", login.Username), zap.String("client_ip", c.ClientIP()))
			utils.SendErrorResponse(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListServices handles the managed service list
// GET /admin/services
func (h *AdminHandler) ListServices(c *gin.Context) {
	h.proxy.ProxyRequest(c, "/services")
}

// StartService handles starting a managed service
// POST /admin/services/{name}/start
func (h *AdminHandler) StartService(c *gin.Context) {
	name := c.Param("name")
	status := h.proxy.ProxyRequest(c, "/services/"+name+"/start")
	h.audit(c, "service.start", name, status)
}

// StopService handles stopping a managed service
// POST /admin/services/{name}/stop
func (h *AdminHandler) StopService(c *gin.Context) {
	name := c.Param("name")
	status := h.proxy.ProxyRequest(c, "/services/"+name+"/stop")
	h.audit(c, "service.stop", name, status)
}

// ServiceLogs handles the log tail of a managed service
// GET /admin/services/{name}/logs?lines=200
func (h *AdminHandler) ServiceLogs(c *gin.Context) {
	h.proxy.ProxyRequest(c, "/services/"+c.Param("name")+"/logs")
}

// GetJob handles a scheduler job definition
// GET /admin/scheduler/jobs/{id}
func (h *AdminHandler) GetJob(c *gin.Context) {
	h.proxy.ProxyRequest(c, "/scheduler/jobs/"+c.Param("id"))
}

// UpdateJob handles rescheduling a job
// PUT /admin/scheduler/jobs/{id}
func (h *AdminHandler) UpdateJob(c *gin.Context) {
	id := c.Param("id")
	status := h.proxy.ProxyRequest(c, "/scheduler/jobs/"+id)
	h.audit(c, "scheduler.update", id, status)
}

// GenerateSummary handles an on-demand market summary run
// POST /admin/summary/generate
func (h *AdminHandler) GenerateSummary(c *gin.Context) {
	status := h.proxy.ProxyRequest(c, "/summary/generate")
	h.audit(c, "summary.generate", "daily_summary", status)
}

// ReindexAssets handles an immediate asset index rebuild
// POST /admin/assets/reindex
func (h *AdminHandler) ReindexAssets(c *gin.Context) {
	idx, err := h.assets.Reindex(c.Request.Context())
	if err != nil {
		h.audit(c, "assets.reindex", "assets", http.StatusInternalServerError)
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to rebuild asset index")
		return
	}

	h.audit(c, "assets.reindex", "assets", http.StatusOK)
	c.JSON(http.StatusOK, gin.H{
		"builtAt": idx.BuiltAt,
		"files":   idx.Stats(),
	})
}

// audit publishes an admin event; failures are logged, never surfaced
func (h *AdminHandler) audit(c *gin.Context, action, target string, status int) {
	event := model.AdminEvent{
		Action:    action,
		Target:    target,
		Username:  c.GetString(middleware.AdminSubjectKey),
		RequestID: middleware.GetRequestID(c),
		Status:    status,
		At:        time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), auditTimeout)
	defer cancel()
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("Failed to publish admin event", zap.Error(err), zap.String("action", action))
	}
}
