package routes

import (
	"github.com/gin-gonic/gin"

	"simbi_backend/internal/middleware"
	"simbi_backend/ws"
)

func SetupWebSocketRoutes(r *gin.Engine, wsHandler *ws.WebSocketHandler) {
	r.GET("/ws", middleware.WSAuthMiddleware(), wsHandler.ServeWS)
}
