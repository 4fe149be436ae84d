package services

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"simbi_backend/internal/jobs"
	"simbi_backend/internal/logger"
	"simbi_backend/internal/models"
	"simbi_backend/internal/repositories"
	"simbi_backend/internal/services/dto"
	"simbi_backend/pkg/apperrors"
)

const (
	DefaultNotificationPageSize = 50
	MaxNotificationPageSize     = 100
)

type NotificationService interface {
	// Create persists the notification, pushes it to online clients and
	// queues an email when the recipient opted in.
	Create(db *gorm.DB, input dto.CreateNotificationInput) (*dto.NotificationResponse, error)
	GetUserNotifications(db *gorm.DB, userID string, criteria dto.NotificationCriteria) (*dto.NotificationListResponse, error)
	GetUnreadCount(db *gorm.DB, userID string) (int64, error)
	MarkAsRead(db *gorm.DB, userID, notificationID string) error
	MarkAllAsRead(db *gorm.DB, userID string) (int64, error)
	DeleteNotification(db *gorm.DB, userID, notificationID string) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	realtime         RealtimePublisher
	dispatcher       jobs.Dispatcher
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	realtime RealtimePublisher,
	dispatcher jobs.Dispatcher,
) NotificationService {
	if realtime == nil {
		realtime = NopPublisher{}
	}
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		realtime:         realtime,
		dispatcher:       dispatcher,
	}
}

func (s *notificationService) Create(db *gorm.DB, input dto.CreateNotificationInput) (*dto.NotificationResponse, error) {
	user, err := s.userRepo.FindByID(db, input.UserID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	notification := &models.Notification{
		UserID:    input.UserID,
		Type:      input.Type,
		Title:     input.Title,
		Content:   input.Content,
		ActionURL: input.ActionURL,
	}
	if len(input.Data) > 0 {
		raw, err := json.Marshal(input.Data)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		notification.Data = datatypes.JSON(raw)
	}

	if err := s.notificationRepo.Create(db, notification); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := dto.NewNotificationResponse(notification)
	ctx := ctxOf(db)

	if s.realtime.IsUserOnline(user.ID) {
		s.realtime.SendToUser(user.ID, "notification", resp)
	}

	if user.EmailNotifications && s.dispatcher != nil {
		err := s.dispatcher.EnqueueNotificationEmail(ctx, jobs.NotificationEmailPayload{
			To:        user.Email,
			Name:      user.DisplayName(),
			Title:     notification.Title,
			Content:   notification.Content,
			ActionURL: notification.ActionURL,
		})
		if err != nil {
			// the in-app notification already exists
			logger.CtxWithError(ctx, "Failed to enqueue notification email", err, "notification_id", notification.ID)
		}
	}

	return resp, nil
}

func (s *notificationService) GetUserNotifications(db *gorm.DB, userID string, criteria dto.NotificationCriteria) (*dto.NotificationListResponse, error) {
	page, pageSize := normalizePage(criteria.Page, criteria.PageSize, DefaultNotificationPageSize, MaxNotificationPageSize)

	notifications, total, err := s.notificationRepo.FindUserNotifications(db, userID, repositories.NotificationFilter{
		UnreadOnly: criteria.UnreadOnly,
		Type:       criteria.Type,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	unread, err := s.notificationRepo.CountUnread(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, dto.NewNotificationResponse(&notifications[i]))
	}

	return &dto.NotificationListResponse{
		Notifications: items,
		UnreadCount:   unread,
		Pagination:    dto.NewPagination(total, page, pageSize),
	}, nil
}

func (s *notificationService) GetUnreadCount(db *gorm.DB, userID string) (int64, error) {
	count, err := s.notificationRepo.CountUnread(db, userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *notificationService) MarkAsRead(db *gorm.DB, userID, notificationID string) error {
	return mapRepoError(s.notificationRepo.MarkAsRead(db, notificationID, userID))
}

func (s *notificationService) MarkAllAsRead(db *gorm.DB, userID string) (int64, error) {
	updated, err := s.notificationRepo.MarkAllAsRead(db, userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return updated, nil
}

func (s *notificationService) DeleteNotification(db *gorm.DB, userID, notificationID string) error {
	return mapRepoError(s.notificationRepo.Delete(db, notificationID, userID))
}
