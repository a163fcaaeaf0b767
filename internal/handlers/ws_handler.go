package handlers

import (
	"github.com/gin-gonic/gin"

	"io.mapwave.beacon/internal/hub"
)

// WSHandler exposes the hub's WebSocket endpoint through gin.
type WSHandler struct {
	hub *hub.Hub
}

func NewWSHandler(h *hub.Hub) *WSHandler {
	return &WSHandler{hub: h}
}

// Subscribe upgrades the request and attaches the browser to the event stream
func (h *WSHandler) Subscribe(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}
