package repositories

import (
	"time"

	"simbi_backend/internal/models"

	"gorm.io/gorm"
)

// NotificationFilter narrows a user's notification list.
type NotificationFilter struct {
	UnreadOnly bool
	Type       models.NotificationType
	Page       int
	PageSize   int
}

type NotificationRepository interface {
	Create(db *gorm.DB, notification *models.Notification) error
	FindByID(db *gorm.DB, id string) (*models.Notification, error)
	// FindUserNotifications is always newest first.
	FindUserNotifications(db *gorm.DB, userID string, filter NotificationFilter) ([]models.Notification, int64, error)
	// MarkAsRead is a no-op for an already read notification.
	MarkAsRead(db *gorm.DB, id, userID string) error
	// MarkAllAsRead returns how many notifications changed state.
	MarkAllAsRead(db *gorm.DB, userID string) (int64, error)
	CountUnread(db *gorm.DB, userID string) (int64, error)
	Delete(db *gorm.DB, id, userID string) error
	DeleteReadOlderThan(db *gorm.DB, cutoff time.Time) (int64, error)
}

type notificationRepository struct{}

func NewNotificationRepository() NotificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(db *gorm.DB, notification *models.Notification) error {
	return db.Create(notification).Error
}

func (r *notificationRepository) FindByID(db *gorm.DB, id string) (*models.Notification, error) {
	var notification models.Notification
	if err := db.First(&notification, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrNotificationNotFound)
	}
	return &notification, nil
}

func (r *notificationRepository) FindUserNotifications(db *gorm.DB, userID string, filter NotificationFilter) ([]models.Notification, int64, error) {
	query := db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").Order("id DESC").
		Scopes(paginate(filter.Page, filter.PageSize)).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepository) MarkAsRead(db *gorm.DB, id, userID string) error {
	var notification models.Notification
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error; err != nil {
		return notFound(err, ErrNotificationNotFound)
	}
	if notification.IsRead {
		return nil
	}
	now := time.Now().UTC()
	return db.Model(&notification).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	}).Error
}

func (r *notificationRepository) MarkAllAsRead(db *gorm.DB, userID string) (int64, error) {
	now := time.Now().UTC()
	result := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) CountUnread(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) Delete(db *gorm.DB, id, userID string) error {
	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) DeleteReadOlderThan(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("is_read = ? AND created_at < ?", true, cutoff).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
