package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProxyRequest_ForwardsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scheduler/jobs/daily", r.URL.Path)
		assert.Equal(t, "x=1", r.URL.RawQuery)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"hour":9}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	p, err := NewServiceProxy(upstream.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	var status int
	r := gin.New()
	r.PUT("/admin/scheduler/jobs/:id", func(c *gin.Context) {
		status = p.ProxyRequest(c, "scheduler/jobs/"+c.Param("id"))
	})

	req := httptest.NewRequest(http.MethodPut, "/admin/scheduler/jobs/daily?x=1", strings.NewReader(`{"hour":9}`))
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, http.StatusAccepted, status)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestProxyRequest_UpstreamDown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	upstream := httptest.NewServer(http.NotFoundHandler())
	upstream.Close()

	p, err := NewServiceProxy(upstream.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	r := gin.New()
	r.GET("/admin/services", func(c *gin.Context) { p.ProxyRequest(c, "/services") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/services", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
