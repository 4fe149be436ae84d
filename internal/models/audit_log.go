package models

import "gorm.io/datatypes"

// AuditLog records every administrative action.
type AuditLog struct {
	BaseModel
	AdminID    string         `gorm:"type:varchar(36);not null;index" json:"adminId"`
	Action     string         `gorm:"type:varchar(50);not null" json:"action"`
	EntityType string         `gorm:"type:varchar(30);not null" json:"entityType"`
	EntityID   string         `gorm:"type:varchar(36);not null" json:"entityId"`
	OldValue   datatypes.JSON `json:"oldValue,omitempty"`
	NewValue   datatypes.JSON `json:"newValue,omitempty"`
}
