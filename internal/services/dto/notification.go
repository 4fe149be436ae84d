package dto

import (
	"encoding/json"
	"time"

	"simbi_backend/internal/models"
)

// NotificationListQuery is bound from the query string.
type NotificationListQuery struct {
	UnreadOnly bool   `form:"unread_only"`
	Type       string `form:"type" validate:"omitempty,is-notification-type"`
}

// NotificationCriteria is what the repository filters on.
type NotificationCriteria struct {
	Page       int
	PageSize   int
	UnreadOnly bool
	Type       models.NotificationType
}

// CreateNotificationInput is used by other services, never bound from HTTP.
type CreateNotificationInput struct {
	UserID    string
	Type      models.NotificationType
	Title     string
	Content   string
	Data      map[string]interface{}
	ActionURL string
}

type NotificationResponse struct {
	ID        string                  `json:"id"`
	Type      models.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Content   string                  `json:"content"`
	Data      map[string]interface{}  `json:"data,omitempty"`
	ActionURL string                  `json:"actionUrl,omitempty"`
	IsRead    bool                    `json:"read"`
	ReadAt    *time.Time              `json:"readAt,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

func NewNotificationResponse(n *models.Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Content:   n.Content,
		ActionURL: n.ActionURL,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
	if len(n.Data) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(n.Data, &data); err == nil {
			resp.Data = data
		}
	}
	return resp
}

type NotificationListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	UnreadCount   int64                   `json:"unreadCount"`
	Pagination
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
