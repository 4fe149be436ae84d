package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel
	UserID    string           `gorm:"type:varchar(36);not null;index" json:"userId"`
	Type      NotificationType `gorm:"type:varchar(40);not null;index" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Content   string           `gorm:"type:text" json:"content"`
	Data      datatypes.JSON   `json:"data,omitempty"`
	ActionURL string           `json:"actionUrl,omitempty"`
	IsRead    bool             `gorm:"not null;default:false;index" json:"isRead"`
	ReadAt    *time.Time       `json:"readAt,omitempty"`
}
