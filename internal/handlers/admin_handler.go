package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"simbi_backend/internal/middleware"
	"simbi_backend/internal/models"
	"simbi_backend/internal/services"
	"simbi_backend/internal/services/dto"
)

type AdminHandler struct {
	*BaseHandler
	adminService services.AdminService
	accounts     middleware.AccountLookup
}

func NewAdminHandler(base *BaseHandler, adminService services.AdminService, accounts middleware.AccountLookup) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  base,
		adminService: adminService,
		accounts:     accounts,
	}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RefreshAccount(h.accounts))

	adminOnly := middleware.RequireRoles(models.UserRoleAdmin)
	staff := middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleModerator)

	// Users
	admin.GET("/users", adminOnly, h.ListUsers)
	admin.GET("/users/:id", staff, h.GetUser)
	admin.PUT("/users/:id/role", adminOnly, h.UpdateUserRole)
	admin.POST("/users/:id/ban", adminOnly, h.BanUser)
	admin.POST("/users/:id/unban", adminOnly, h.UnbanUser)

	// Moderation
	admin.GET("/flags", staff, h.ListFlags)
	admin.POST("/flags/:id/resolve", staff, h.ResolveFlag)
	admin.POST("/services/:id/moderate", staff, h.ModerateService)

	// Platform
	admin.GET("/stats", adminOnly, h.GetStats)
	admin.GET("/activity", adminOnly, h.GetActivity)
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role"
// @Param q query string false "Matches email, username or name"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.AdminUserListResponse
// @Failure 403 {object} map[string]interface{} "Admins only"
// @Router /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var query dto.AdminUserQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	page, pageSize := ParsePagination(c)

	list, err := h.adminService.ListUsers(h.GetDB(c), &query, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.adminService.GetUser(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRoleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.adminService.UpdateUserRole(h.GetDB(c), adminID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// BanUser godoc
// @Summary Ban a user
// @Description Sets the status to banned and revokes every session. Duration is in days; omit it for a permanent ban.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param ban body dto.BanUserRequest true "Reason and optional duration"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} map[string]interface{} "Cannot ban yourself"
// @Router /api/v1/admin/users/{id}/ban [post]
func (h *AdminHandler) BanUser(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.BanUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.adminService.BanUser(h.GetDB(c), adminID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) UnbanUser(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.adminService.UnbanUser(h.GetDB(c), adminID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) ListFlags(c *gin.Context) {
	page, pageSize := ParsePagination(c)
	includeResolved := c.Query("all") == "true"

	list, err := h.adminService.ListFlags(h.GetDB(c), includeResolved, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) ResolveFlag(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ResolveFlagRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	flag, err := h.adminService.ResolveFlag(h.GetDB(c), adminID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, flag)
}

func (h *AdminHandler) ModerateService(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ModerateContentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	service, err := h.adminService.ModerateService(h.GetDB(c), adminID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) GetActivity(c *gin.Context) {
	entries, err := h.adminService.GetActivity(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries})
}
