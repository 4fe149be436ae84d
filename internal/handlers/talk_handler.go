package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"simbi_backend/internal/middleware"
	"simbi_backend/internal/services"
	"simbi_backend/internal/services/dto"
)

type TalkHandler struct {
	*BaseHandler
	talkService services.TalkService
}

func NewTalkHandler(base *BaseHandler, talkService services.TalkService) *TalkHandler {
	return &TalkHandler{
		BaseHandler: base,
		talkService: talkService,
	}
}

func (h *TalkHandler) RegisterRoutes(rg *gin.RouterGroup) {
	talks := rg.Group("/talks")
	talks.Use(middleware.AuthMiddleware())
	{
		talks.POST("", h.CreateTalk)
		talks.GET("", h.GetTalks)
		talks.POST("/offers/:id/accept", h.AcceptOffer)
		talks.POST("/offers/:id/decline", h.DeclineOffer)
		talks.GET("/:id", h.GetTalk)
		talks.POST("/:id/message", h.SendMessage)
		talks.POST("/:id/offer", h.CreateOffer)
		talks.POST("/:id/archive", h.ArchiveTalk)
	}
}

// CreateTalk godoc
// @Summary Start a talk with another user
// @Tags talks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param talk body dto.CreateTalkRequest true "Receiver and optional first message"
// @Success 201 {object} dto.TalkResponse
// @Failure 400 {object} map[string]interface{} "Cannot talk to yourself"
// @Failure 404 {object} map[string]interface{} "Receiver not found"
// @Router /api/v1/talks [post]
func (h *TalkHandler) CreateTalk(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTalkRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	talk, err := h.talkService.CreateTalk(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, talk)
}

func (h *TalkHandler) GetTalks(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	talks, err := h.talkService.GetTalks(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"talks": talks})
}

func (h *TalkHandler) GetTalk(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	talk, err := h.talkService.GetTalk(h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, talk)
}

// SendMessage godoc
// @Summary Send a message in a talk
// @Tags talks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Talk ID"
// @Param message body dto.SendMessageRequest true "Message"
// @Success 201 {object} dto.MessageResponse
// @Failure 403 {object} map[string]interface{} "Not a participant"
// @Router /api/v1/talks/{id}/message [post]
func (h *TalkHandler) SendMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	msg, err := h.talkService.SendMessage(h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (h *TalkHandler) CreateOffer(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateOfferRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	offer, err := h.talkService.CreateOffer(h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, offer)
}

func (h *TalkHandler) AcceptOffer(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	offer, err := h.talkService.AcceptOffer(h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

func (h *TalkHandler) DeclineOffer(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	offer, err := h.talkService.DeclineOffer(h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

func (h *TalkHandler) ArchiveTalk(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.talkService.ArchiveTalk(h.GetDB(c), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}
