package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "simbi_backend/docs"
	"simbi_backend/internal/handlers"
)

// SystemOptions controls the routes outside /api/v1.
type SystemOptions struct {
	Swagger bool
	// UploadsDir is served under /uploads when the local storage backend is used.
	UploadsDir string
}

func SetupSystemRoutes(r *gin.Engine, health *handlers.HealthHandler, opts SystemOptions) {
	if health != nil {
		health.RegisterRoutes(r)
	}
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if opts.UploadsDir != "" {
		r.Static("/uploads", opts.UploadsDir)
	}
}
