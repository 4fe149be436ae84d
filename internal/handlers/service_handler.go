package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"simbi_backend/internal/middleware"
	"simbi_backend/internal/services"
	"simbi_backend/internal/services/dto"
)

type ServiceHandler struct {
	*BaseHandler
	marketplace services.MarketplaceService
}

func NewServiceHandler(base *BaseHandler, marketplace services.MarketplaceService) *ServiceHandler {
	return &ServiceHandler{
		BaseHandler: base,
		marketplace: marketplace,
	}
}

// RegisterRoutes registers static paths before /:id so they are not captured by it.
func (h *ServiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	svc := rg.Group("/services")
	{
		svc.GET("", h.ListServices)
		svc.GET("/search", h.SearchServices)
	}

	protected := rg.Group("/services")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("", h.CreateService)
		protected.GET("/my-services", h.GetMyServices)
		protected.GET("/favorites", h.GetFavorites)
		protected.PUT("/:id", h.UpdateService)
		protected.DELETE("/:id", h.DeleteService)
		protected.POST("/:id/publish", h.PublishService)
		protected.POST("/:id/like", h.LikeService)
		protected.DELETE("/:id/unlike", h.UnlikeService)
		protected.POST("/:id/flag", h.FlagService)
	}

	svc.GET("/:id", h.GetService)
}

// CreateService godoc
// @Summary Create a service listing
// @Description The listing starts as a draft and must be published to appear in search.
// @Tags services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param service body dto.CreateServiceRequest true "Service data"
// @Success 201 {object} dto.ServiceResponse
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /api/v1/services [post]
func (h *ServiceHandler) CreateService(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateServiceRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	service, err := h.marketplace.CreateService(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service)
}

func (h *ServiceHandler) ListServices(c *gin.Context) {
	page, pageSize := ParsePagination(c)
	if limit := ParseQueryInt(c, "limit", 0); limit > 0 && pageSize == 0 {
		pageSize = limit
	}

	list, err := h.marketplace.ListServices(h.GetDB(c), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// SearchServices godoc
// @Summary Search active services
// @Tags services
// @Produce json
// @Param q query string false "Text matched against title and description"
// @Param kind query string false "offer or request"
// @Param tradingType query string false "simbi, usd or both"
// @Param lat query number false "Latitude"
// @Param lon query number false "Longitude"
// @Param radius query number false "Radius in miles"
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} dto.ServiceListResponse
// @Router /api/v1/services/search [get]
func (h *ServiceHandler) SearchServices(c *gin.Context) {
	var req dto.SearchServicesRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	list, err := h.marketplace.SearchServices(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *ServiceHandler) GetMyServices(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	list, err := h.marketplace.GetMyServices(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": list})
}

func (h *ServiceHandler) GetFavorites(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	list, err := h.marketplace.GetFavorites(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": list})
}

func (h *ServiceHandler) GetService(c *gin.Context) {
	service, err := h.marketplace.GetService(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, service)
}

func (h *ServiceHandler) UpdateService(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateServiceRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	service, err := h.marketplace.UpdateService(h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, service)
}

func (h *ServiceHandler) DeleteService(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.marketplace.DeleteService(h.GetDB(c), userID, h.GetUserRole(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Service deleted"})
}

func (h *ServiceHandler) PublishService(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	service, err := h.marketplace.PublishService(h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, service)
}

func (h *ServiceHandler) LikeService(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.marketplace.LikeService(h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ServiceHandler) UnlikeService(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.marketplace.UnlikeService(h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ServiceHandler) FlagService(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.FlagServiceRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	flag, err := h.marketplace.FlagService(h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, flag)
}
