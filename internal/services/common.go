package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"simbi_backend/internal/repositories"
	"simbi_backend/pkg/apperrors"
)

// RealtimePublisher pushes events to connected WebSocket clients.
type RealtimePublisher interface {
	BroadcastToConversation(conversationID, event string, data interface{}, exceptUserID string)
	SendToUser(userID, event string, data interface{})
	IsUserOnline(userID string) bool
	GetActiveUsers() []string
}

// NopPublisher is used when no WebSocket hub is running.
type NopPublisher struct{}

func (NopPublisher) BroadcastToConversation(string, string, interface{}, string) {}
func (NopPublisher) SendToUser(string, string, interface{})                      {}
func (NopPublisher) IsUserOnline(string) bool                                    { return false }
func (NopPublisher) GetActiveUsers() []string                                    { return nil }

// ConversationRoom is the room name for a talk.
func ConversationRoom(talkID string) string {
	return "conversation:" + talkID
}

// ctxOf returns the request context carried by db.
func ctxOf(db *gorm.DB) context.Context {
	if db != nil && db.Statement != nil && db.Statement.Context != nil {
		return db.Statement.Context
	}
	return context.Background()
}

// mapRepoError turns repository sentinels into API errors.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, repositories.ErrUserNotFound), errors.Is(err, repositories.ErrAccountNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, repositories.ErrUserAlreadyExists):
		return apperrors.ErrEmailAlreadyExists
	case errors.Is(err, repositories.ErrRefreshTokenNotFound):
		return apperrors.ErrSessionNotFound
	case errors.Is(err, repositories.ErrServiceNotFound):
		return apperrors.ErrServiceNotFound
	case errors.Is(err, repositories.ErrFlagNotFound):
		return apperrors.ErrFlagNotFound
	case errors.Is(err, repositories.ErrTalkNotFound):
		return apperrors.ErrTalkNotFound
	case errors.Is(err, repositories.ErrOfferNotFound):
		return apperrors.ErrOfferNotFound
	case errors.Is(err, repositories.ErrNotificationNotFound):
		return apperrors.ErrNotificationNotFound
	case errors.Is(err, repositories.ErrSubscriptionNotFound):
		return apperrors.ErrSubscriptionNotFound
	case errors.Is(err, repositories.ErrReviewNotFound):
		return apperrors.ErrReviewNotFound
	case errors.Is(err, repositories.ErrReviewAlreadyExists):
		return apperrors.ErrReviewAlreadyExists
	case errors.Is(err, repositories.ErrCommunityNotFound):
		return apperrors.ErrCommunityNotFound
	case errors.Is(err, repositories.ErrUploadNotFound), errors.Is(err, repositories.ErrTransactionNotFound):
		return apperrors.ErrNotFound(err)
	}
	return apperrors.InternalError(err)
}

func normalizePage(page, pageSize, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = def
	}
	if pageSize > max {
		pageSize = max
	}
	return page, pageSize
}
