package utils

import (
	"net/http"

	"github.com/yourorg/kap-news/internal/metrics"

	"github.com/gin-gonic/gin"
)

// DegradedHeader marks a response served empty because a dependency failed
const DegradedHeader = "X-Data-Degraded"

// SendErrorResponse sends a standardized error response
func SendErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// SendDegradedList answers a list endpoint whose dependency failed: 200 with
// an empty array and the degraded header set
func SendDegradedList(c *gin.Context) {
	metrics.DegradedResponses.WithLabelValues(c.FullPath()).Inc()
	c.Header(DegradedHeader, "true")
	c.JSON(http.StatusOK, []struct{}{})
}
