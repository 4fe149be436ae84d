package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ConnectionCounter reports the number of open realtime connections.
type ConnectionCounter interface {
	ConnectionCount() int
}

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
	conns ConnectionCounter
}

// NewHealthHandler builds the handler. redisClient and conns may be nil.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, conns ConnectionCounter) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient, conns: conns}
}

func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.Health)
}

// Health godoc
// @Summary Liveness and dependency status
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	body := gin.H{}

	body["database"] = "ok"
	if err := h.pingDB(ctx); err != nil {
		body["database"] = "error: " + err.Error()
		status = "degraded"
	}

	if h.redis != nil {
		body["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			body["redis"] = "error: " + err.Error()
			status = "degraded"
		}
	}

	connections := 0
	if h.conns != nil {
		connections = h.conns.ConnectionCount()
	}
	body["websocket_connections"] = connections
	body["status"] = status

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, body)
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
