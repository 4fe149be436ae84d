package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"simbi_backend/internal/middleware"
	"simbi_backend/internal/services"
)

type CommunityHandler struct {
	*BaseHandler
	communityService services.CommunityService
}

func NewCommunityHandler(base *BaseHandler, communityService services.CommunityService) *CommunityHandler {
	return &CommunityHandler{
		BaseHandler:      base,
		communityService: communityService,
	}
}

func (h *CommunityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	communities := rg.Group("/communities")
	{
		communities.GET("", h.ListCommunities)
		communities.GET("/:id", h.GetCommunity)
	}

	protected := rg.Group("/communities")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/:id/join", h.JoinCommunity)
		protected.DELETE("/:id/leave", h.LeaveCommunity)
	}
}

func (h *CommunityHandler) ListCommunities(c *gin.Context) {
	list, err := h.communityService.ListCommunities(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"communities": list})
}

func (h *CommunityHandler) GetCommunity(c *gin.Context) {
	community, err := h.communityService.GetCommunity(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) JoinCommunity(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	community, err := h.communityService.JoinCommunity(h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) LeaveCommunity(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	community, err := h.communityService.LeaveCommunity(h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}
