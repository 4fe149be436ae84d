package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"simbi_backend/internal/middleware"
	"simbi_backend/internal/services"
	"simbi_backend/internal/services/dto"
	"simbi_backend/pkg/apperrors"
)

type PaymentHandler struct {
	*BaseHandler
	paymentService services.PaymentService
}

func NewPaymentHandler(base *BaseHandler, paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// Called by the gateway, authenticated by signature.
	rg.POST("/payments/webhook", h.HandleWebhook)

	payments := rg.Group("/payments")
	payments.Use(middleware.AuthMiddleware())
	{
		payments.POST("/intent", h.CreatePaymentIntent)
		payments.GET("/methods", h.GetPaymentMethods)
		payments.POST("/methods", h.AddPaymentMethod)
		payments.POST("/setup-intent", h.CreateSetupIntent)
		payments.POST("/subscription", h.CreateSubscription)
		payments.DELETE("/subscription/:id", h.CancelSubscription)
		payments.GET("/transactions", h.GetTransactions)
	}
}

// CreatePaymentIntent godoc
// @Summary Create a payment intent
// @Description Amount is in minor units and must be between 50 and 99999999.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param intent body dto.CreatePaymentIntentRequest true "Amount and currency"
// @Success 200 {object} dto.PaymentIntentResponse
// @Failure 400 {object} map[string]interface{} "Amount out of range"
// @Failure 503 {object} map[string]interface{} "Payments disabled"
// @Router /api/v1/payments/intent [post]
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePaymentIntentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	intent, err := h.paymentService.CreatePaymentIntent(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, intent)
}

func (h *PaymentHandler) GetPaymentMethods(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	methods, err := h.paymentService.GetPaymentMethods(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"paymentMethods": methods})
}

func (h *PaymentHandler) AddPaymentMethod(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.AddPaymentMethodRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	method, err := h.paymentService.AddPaymentMethod(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, method)
}

func (h *PaymentHandler) CreateSetupIntent(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	intent, err := h.paymentService.CreateSetupIntent(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, intent)
}

func (h *PaymentHandler) CreateSubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSubscriptionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	sub, err := h.paymentService.CreateSubscription(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

func (h *PaymentHandler) CancelSubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	sub, err := h.paymentService.CancelSubscription(h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *PaymentHandler) GetTransactions(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	list, err := h.paymentService.GetTransactions(h.GetDB(c), userID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

const maxWebhookBody = 64 << 10

// HandleWebhook godoc
// @Summary Payment gateway webhook
// @Description Verifies the Stripe-Signature header and settles the matching transaction.
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Invalid signature"
// @Failure 503 {object} map[string]interface{} "Webhook secret not configured"
// @Router /api/v1/payments/webhook [post]
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		h.HandleServiceError(c, apperrors.NewBadRequestError("webhook payload too large"))
		return
	}

	if err := h.paymentService.HandleWebhook(h.GetDB(c), payload, c.GetHeader("Stripe-Signature")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
