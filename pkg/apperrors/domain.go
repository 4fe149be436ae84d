package apperrors

import (
	"net/http"
)

// =========================================================================
// Factories
// =========================================================================

// ErrNotFound converts a repository "not found" into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// =========================================================================
// Predefined errors
// =========================================================================

// --- Auth ---

var ErrInvalidCredentials = New(CodeInvalidCredentials, "auth", "Invalid credentials", http.StatusUnauthorized)

var ErrInvalidToken = New(CodeInvalidToken, "auth", "Invalid or expired token", http.StatusUnauthorized)

var ErrEmailAlreadyExists = New(CodeEmailExists, "auth", "Email is already registered", http.StatusConflict)

var ErrUsernameTaken = New(CodeAlreadyExists, "user", "Username is already taken", http.StatusConflict)

var ErrAccountBanned = New(CodeAccountBanned, "auth", "Account is banned", http.StatusForbidden)

var ErrAccountInactive = New(CodeForbidden, "auth", "Account is not active", http.StatusForbidden)

var ErrSessionNotFound = New(CodeNotFound, "auth", "Session not found", http.StatusNotFound)

var ErrInsufficientPermissions = New(CodeForbidden, "auth", "Insufficient permissions", http.StatusForbidden)

// ErrCannotModifySelf is returned when an admin targets their own account.
var ErrCannotModifySelf = New(CodeInvalidOperation, "admin", "Operation on self is not allowed", http.StatusBadRequest)

// --- Users ---

var ErrUserNotFound = New(CodeNotFound, "user", "User not found", http.StatusNotFound)

var ErrCannotFollowSelf = New(CodeInvalidOperation, "user", "You cannot follow yourself", http.StatusBadRequest)

// --- Services ---

var ErrServiceNotFound = New(CodeNotFound, "service", "Service not found", http.StatusNotFound)

var ErrNotServiceOwner = New(CodeForbidden, "service", "You can only modify your own services", http.StatusForbidden)

var ErrFlagNotFound = New(CodeNotFound, "flag", "Flag not found", http.StatusNotFound)

// --- Talks ---

var ErrTalkNotFound = New(CodeNotFound, "talk", "Talk not found", http.StatusNotFound)

var ErrTalkAccessDenied = New(CodeForbidden, "talk", "Access to talk denied", http.StatusForbidden)

var ErrCannotTalkToSelf = New(CodeInvalidOperation, "talk", "You cannot start a talk with yourself", http.StatusBadRequest)

var ErrOfferNotFound = New(CodeNotFound, "offer", "Offer not found", http.StatusNotFound)

var ErrOfferNotPending = New(CodeInvalidStatus, "offer", "Offer is no longer pending", http.StatusConflict)

var ErrNotOfferReceiver = New(CodeForbidden, "offer", "Only the offer receiver can respond to it", http.StatusForbidden)

// --- Notifications ---

var ErrNotificationNotFound = New(CodeNotFound, "notification", "Notification not found", http.StatusNotFound)

// --- Reviews ---

var ErrCannotReviewSelf = New(CodeInvalidOperation, "review", "You cannot review yourself", http.StatusBadRequest)

var ErrReviewAlreadyExists = New(CodeAlreadyExists, "review", "You have already reviewed this user for this service", http.StatusConflict)

var ErrReviewNotFound = New(CodeNotFound, "review", "Review not found", http.StatusNotFound)

// --- Communities ---

var ErrCommunityNotFound = New(CodeNotFound, "community", "Community not found", http.StatusNotFound)

// --- Uploads ---

var ErrFileTooLarge = New(CodeLimitExceeded, "upload", "File size exceeds the allowed limit", http.StatusRequestEntityTooLarge)

var ErrInvalidFileType = New(CodeValidationFailed, "upload", "The provided file type is not allowed", http.StatusBadRequest)

// --- Payments ---

var ErrPaymentGatewayDisabled = New(
	CodePaymentGatewayDisabled,
	"payment",
	"Payment processing is not configured",
	http.StatusServiceUnavailable,
)

var ErrPaymentProvider = New(CodeExternalServiceError, "payment", "Payment provider error", http.StatusBadGateway)

var ErrInvalidWebhookSignature = New(CodeInvalidToken, "payment", "Invalid webhook signature", http.StatusBadRequest)

var ErrSubscriptionNotFound = New(CodeNotFound, "payment", "Subscription not found", http.StatusNotFound)
