package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"simbi_backend/internal/logger"
	"simbi_backend/internal/models"
	"simbi_backend/internal/repositories"
	"simbi_backend/internal/services/dto"
	"simbi_backend/internal/services/payment"
	"simbi_backend/pkg/apperrors"
)

const defaultTransactionPageSize = 20

type PaymentService interface {
	CreatePaymentIntent(db *gorm.DB, userID string, req *dto.CreatePaymentIntentRequest) (*dto.PaymentIntentResponse, error)
	GetPaymentMethods(db *gorm.DB, userID string) ([]*dto.PaymentMethodResponse, error)
	AddPaymentMethod(db *gorm.DB, userID string, req *dto.AddPaymentMethodRequest) (*dto.PaymentMethodResponse, error)
	CreateSetupIntent(db *gorm.DB, userID string) (*dto.SetupIntentResponse, error)
	CreateSubscription(db *gorm.DB, userID string, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	CancelSubscription(db *gorm.DB, userID, subscriptionID string) (*dto.SubscriptionResponse, error)
	GetTransactions(db *gorm.DB, userID string, page, pageSize int) (*dto.TransactionListResponse, error)
	HandleWebhook(db *gorm.DB, payload []byte, signature string) error
}

type PaymentServiceImpl struct {
	gateway             payment.Gateway
	paymentRepo         repositories.PaymentRepository
	userRepo            repositories.UserRepository
	notificationService NotificationService
	defaultCurrency     string
	webhookSecret       string
}

func NewPaymentService(
	gateway payment.Gateway,
	paymentRepo repositories.PaymentRepository,
	userRepo repositories.UserRepository,
	notificationService NotificationService,
	defaultCurrency string,
	webhookSecret string,
) PaymentService {
	if defaultCurrency == "" {
		defaultCurrency = "usd"
	}
	return &PaymentServiceImpl{
		gateway:             gateway,
		paymentRepo:         paymentRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		defaultCurrency:     strings.ToLower(defaultCurrency),
		webhookSecret:       webhookSecret,
	}
}

func (s *PaymentServiceImpl) CreatePaymentIntent(db *gorm.DB, userID string, req *dto.CreatePaymentIntentRequest) (*dto.PaymentIntentResponse, error) {
	if err := s.checkEnabled(); err != nil {
		return nil, err
	}
	if req.Amount < dto.MinPaymentAmount || req.Amount > dto.MaxPaymentAmount {
		return nil, apperrors.ValidationError(map[string]string{"amount": "amount must be between 50 and 99999999"})
	}

	customerID, err := s.ensureCustomer(db, userID)
	if err != nil {
		return nil, err
	}

	currency := s.defaultCurrency
	if req.Currency != "" {
		currency = strings.ToLower(req.Currency)
	}

	intent, err := s.gateway.CreatePaymentIntent(ctxOf(db), payment.IntentParams{
		CustomerID:  customerID,
		Amount:      req.Amount,
		Currency:    currency,
		Description: req.Description,
		Metadata:    map[string]string{"userId": userID},
	})
	if err != nil {
		return nil, s.gatewayError(db, err)
	}

	record := &models.PaymentTransaction{
		UserID:          userID,
		PaymentIntentID: intent.ID,
		Amount:          req.Amount,
		Currency:        currency,
		Description:     req.Description,
		Status:          models.PaymentStatusPending,
	}
	if err := s.paymentRepo.CreateTransaction(db, record); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctxOf(db), "Payment intent created", "user_id", userID, "intent_id", intent.ID, "amount", req.Amount)

	return &dto.PaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          req.Amount,
		Currency:        currency,
		Status:          intent.Status,
	}, nil
}

// GetPaymentMethods returns an empty list for users without a gateway customer.
func (s *PaymentServiceImpl) GetPaymentMethods(db *gorm.DB, userID string) ([]*dto.PaymentMethodResponse, error) {
	if err := s.checkEnabled(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if user.StripeCustomerID == "" {
		return []*dto.PaymentMethodResponse{}, nil
	}

	methods, err := s.gateway.ListPaymentMethods(ctxOf(db), user.StripeCustomerID)
	if err != nil {
		return nil, s.gatewayError(db, err)
	}
	out := make([]*dto.PaymentMethodResponse, 0, len(methods))
	for i := range methods {
		out = append(out, toMethodResponse(&methods[i]))
	}
	return out, nil
}

func (s *PaymentServiceImpl) AddPaymentMethod(db *gorm.DB, userID string, req *dto.AddPaymentMethodRequest) (*dto.PaymentMethodResponse, error) {
	if err := s.checkEnabled(); err != nil {
		return nil, err
	}
	customerID, err := s.ensureCustomer(db, userID)
	if err != nil {
		return nil, err
	}
	method, err := s.gateway.AttachPaymentMethod(ctxOf(db), customerID, req.PaymentMethodID)
	if err != nil {
		return nil, s.gatewayError(db, err)
	}
	return toMethodResponse(method), nil
}

func (s *PaymentServiceImpl) CreateSetupIntent(db *gorm.DB, userID string) (*dto.SetupIntentResponse, error) {
	if err := s.checkEnabled(); err != nil {
		return nil, err
	}
	customerID, err := s.ensureCustomer(db, userID)
	if err != nil {
		return nil, err
	}
	si, err := s.gateway.CreateSetupIntent(ctxOf(db), customerID)
	if err != nil {
		return nil, s.gatewayError(db, err)
	}
	return &dto.SetupIntentResponse{ClientSecret: si.ClientSecret, SetupIntentID: si.ID}, nil
}

func (s *PaymentServiceImpl) CreateSubscription(db *gorm.DB, userID string, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := s.checkEnabled(); err != nil {
		return nil, err
	}
	customerID, err := s.ensureCustomer(db, userID)
	if err != nil {
		return nil, err
	}

	ctx := ctxOf(db)
	if req.PaymentMethodID != "" {
		if _, err := s.gateway.AttachPaymentMethod(ctx, customerID, req.PaymentMethodID); err != nil {
			return nil, s.gatewayError(db, err)
		}
	}

	sub, err := s.gateway.CreateSubscription(ctx, customerID, req.PriceID)
	if err != nil {
		return nil, s.gatewayError(db, err)
	}

	record := &models.PaymentSubscription{
		UserID:                userID,
		GatewaySubscriptionID: sub.ID,
		PriceID:               req.PriceID,
		Status:                sub.Status,
		CurrentPeriodStart:    sub.CurrentPeriodStart,
		CurrentPeriodEnd:      sub.CurrentPeriodEnd,
	}
	if err := s.paymentRepo.CreateSubscription(db, record); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Subscription created", "user_id", userID, "subscription_id", sub.ID)

	resp := dto.NewSubscriptionResponse(record)
	resp.ClientSecret = sub.ClientSecret
	return resp, nil
}

// CancelSubscription only cancels subscriptions stored for userID.
func (s *PaymentServiceImpl) CancelSubscription(db *gorm.DB, userID, subscriptionID string) (*dto.SubscriptionResponse, error) {
	if err := s.checkEnabled(); err != nil {
		return nil, err
	}
	record, err := s.paymentRepo.FindSubscription(db, userID, subscriptionID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	sub, err := s.gateway.CancelSubscription(ctxOf(db), subscriptionID)
	if err != nil {
		return nil, s.gatewayError(db, err)
	}

	record.Status = sub.Status
	record.CanceledAt = sub.CanceledAt
	if err := s.paymentRepo.UpdateSubscription(db, record); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewSubscriptionResponse(record), nil
}

func (s *PaymentServiceImpl) GetTransactions(db *gorm.DB, userID string, page, pageSize int) (*dto.TransactionListResponse, error) {
	page, pageSize = normalizePage(page, pageSize, defaultTransactionPageSize, 100)
	txs, total, err := s.paymentRepo.FindTransactionsByUser(db, userID, page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if txs == nil {
		txs = []models.PaymentTransaction{}
	}
	return &dto.TransactionListResponse{
		Transactions: txs,
		Pagination:   dto.NewPagination(total, page, pageSize),
	}, nil
}

// HandleWebhook settles stored transactions from signed gateway events.
// Events for unknown intents are acknowledged so the gateway stops retrying.
func (s *PaymentServiceImpl) HandleWebhook(db *gorm.DB, payload []byte, signature string) error {
	if s.webhookSecret == "" {
		return apperrors.ErrPaymentGatewayDisabled
	}
	ctx := ctxOf(db)

	event, err := payment.ParseWebhook(payload, signature, s.webhookSecret)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			logger.CtxWarn(ctx, "Rejected payment webhook", "error", err.Error())
			return apperrors.ErrInvalidWebhookSignature
		}
		return apperrors.NewBadRequestError("malformed webhook payload")
	}

	var status models.PaymentStatus
	switch event.Type {
	case payment.EventIntentSucceeded:
		status = models.PaymentStatusSucceeded
	case payment.EventIntentFailed:
		status = models.PaymentStatusFailed
	default:
		logger.CtxDebug(ctx, "Ignoring payment webhook", "event_id", event.ID, "type", event.Type)
		return nil
	}

	record, err := s.paymentRepo.FindTransactionByIntent(db, event.PaymentIntentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			logger.CtxWarn(ctx, "Webhook for unknown payment intent", "event_id", event.ID, "intent_id", event.PaymentIntentID)
			return nil
		}
		return apperrors.InternalError(err)
	}
	// Redeliveries and out-of-order failures never move a settled payment.
	if record.Status == models.PaymentStatusSucceeded || record.Status == status {
		return nil
	}

	if err := s.paymentRepo.UpdateTransactionStatus(db, record.PaymentIntentID, status); err != nil {
		return mapRepoError(err)
	}
	logger.CtxInfo(ctx, "Payment settled", "intent_id", record.PaymentIntentID, "user_id", record.UserID, "status", status)

	if status == models.PaymentStatusSucceeded && s.notificationService != nil {
		_, err := s.notificationService.Create(db, dto.CreateNotificationInput{
			UserID:    record.UserID,
			Type:      models.NotificationPaymentSucceeded,
			Title:     "Payment received",
			Content:   fmt.Sprintf("Your payment of %s %s went through.", formatMinorUnits(record.Amount), strings.ToUpper(record.Currency)),
			Data:      map[string]interface{}{"paymentIntentId": record.PaymentIntentID, "amount": record.Amount},
			ActionURL: "/payments/transactions",
		})
		if err != nil {
			logger.CtxWithError(ctx, "Failed to create notification", err, "user_id", record.UserID, "type", models.NotificationPaymentSucceeded)
		}
	}
	return nil
}

// ---------------- helpers ----------------

func formatMinorUnits(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}

func (s *PaymentServiceImpl) checkEnabled() error {
	if s.gateway == nil || !s.gateway.Enabled() {
		return apperrors.ErrPaymentGatewayDisabled
	}
	return nil
}

// ensureCustomer creates the gateway customer on first use and stores its id.
func (s *PaymentServiceImpl) ensureCustomer(db *gorm.DB, userID string) (string, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return "", mapRepoError(err)
	}
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	customerID, err := s.gateway.CreateCustomer(ctxOf(db), payment.Customer{
		Email:  user.Email,
		Name:   user.DisplayName(),
		UserID: user.ID,
	})
	if err != nil {
		return "", s.gatewayError(db, err)
	}

	if err := s.userRepo.UpdateFields(db, userID, map[string]interface{}{"stripe_customer_id": customerID}); err != nil {
		return "", apperrors.InternalError(err)
	}
	return customerID, nil
}

func (s *PaymentServiceImpl) gatewayError(db *gorm.DB, err error) error {
	if errors.Is(err, payment.ErrDisabled) {
		return apperrors.ErrPaymentGatewayDisabled
	}
	logger.CtxWithError(ctxOf(db), "Payment gateway call failed", err)
	return apperrors.ErrPaymentProvider.WithError(err)
}

func toMethodResponse(m *payment.Method) *dto.PaymentMethodResponse {
	return &dto.PaymentMethodResponse{
		ID:       m.ID,
		Brand:    m.Brand,
		Last4:    m.Last4,
		ExpMonth: m.ExpMonth,
		ExpYear:  m.ExpYear,
	}
}
