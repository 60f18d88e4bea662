package proxy

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// hopHeaders are not forwarded to the process manager. Authorization carries
// the admin token, which is only meaningful to this API.
var hopHeaders = map[string]struct{}{
	"Authorization":     {},
	"Connection":        {},
	"Keep-Alive":        {},
	"Transfer-Encoding": {},
	"Upgrade":           {},
}

// ServiceProxy forwards admin requests to the external process manager
type ServiceProxy struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

// NewServiceProxy creates a new service proxy
func NewServiceProxy(baseURL string, timeout time.Duration, logger *zap.Logger) (*ServiceProxy, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ServiceProxy{
		baseURL: target,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// ProxyRequest forwards the request to path on the process manager and
// copies the response back. It returns the status written to the client.
func (p *ServiceProxy) ProxyRequest(c *gin.Context, path string) int {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	targetURL := *p.baseURL
	targetURL.Path = strings.TrimRight(targetURL.Path, "/") + path
	targetURL.RawQuery = c.Request.URL.RawQuery

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL.String(), c.Request.Body)
	if err != nil {
		p.logger.Error("Failed to create request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return http.StatusInternalServerError
	}

	for key, values := range c.Request.Header {
		if _, skip := hopHeaders[http.CanonicalHeaderKey(key)]; skip {
			continue
		}
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("X-Forwarded-For", c.ClientIP())
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	req.Header.Set("X-Forwarded-Proto", scheme)
	req.Header.Set("X-Forwarded-Host", c.Request.Host)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("Failed to proxy request",
			zap.Error(err),
			zap.String("url", targetURL.String()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Process manager unavailable"})
		return http.StatusBadGateway
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		if _, skip := hopHeaders[key]; skip {
			continue
		}
		for _, value := range values {
			c.Writer.Header().Add(key, value)
		}
	}
	c.Status(resp.StatusCode)

	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		// Response has already started, cannot send an error response
		p.logger.Error("Failed to copy response body", zap.Error(err))
	}
	return resp.StatusCode
}
