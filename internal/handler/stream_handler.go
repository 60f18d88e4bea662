package handler

import (
	"github.com/yourorg/kap-news/internal/stream"

	"github.com/gin-gonic/gin"
)

// StreamHandler upgrades clients to the live price stream
type StreamHandler struct {
	hub *stream.Hub
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(hub *stream.Hub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// Prices handles the WebSocket upgrade
// GET /ws/prices
func (h *StreamHandler) Prices(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}
