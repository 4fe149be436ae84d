package routes

import (
	"github.com/gin-gonic/gin"

	"simbi_backend/internal/handlers"
	"simbi_backend/internal/logger"
	"simbi_backend/ws"
)

// RegisterRoutes registers every HTTP and WebSocket route.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	opts SystemOptions,
) {
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.UserHandler.RegisterRoutes(api)
		appHandlers.ServiceHandler.RegisterRoutes(api)
		appHandlers.TalkHandler.RegisterRoutes(api)
		appHandlers.NotificationHandler.RegisterRoutes(api)
		appHandlers.PaymentHandler.RegisterRoutes(api)
		appHandlers.ReviewHandler.RegisterRoutes(api)
		appHandlers.CommunityHandler.RegisterRoutes(api)
		appHandlers.UploadHandler.RegisterRoutes(api)
		appHandlers.AdminHandler.RegisterRoutes(api)
	}

	SetupSystemRoutes(ginRouter, appHandlers.HealthHandler, opts)

	if wsHandler != nil {
		SetupWebSocketRoutes(ginRouter, wsHandler)
		logger.Info("WebSocket route /ws registered")
	}
}
