package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/conexaomental/clinica-api/internal/realtime"
)

type RealtimeHandler struct {
	hub *realtime.Hub
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Connect faz o upgrade para WebSocket; a autenticação vem antes, via ?token=.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	h.hub.Serve(c.Writer, c.Request)
}
