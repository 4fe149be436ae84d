package repositories

import (
	"simbi_backend/internal/models"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, entry *models.AuditLog) error
	FindRecent(db *gorm.DB, limit int) ([]models.AuditLog, error)
}

type auditLogRepository struct{}

func NewAuditLogRepository() AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(db *gorm.DB, entry *models.AuditLog) error {
	return db.Create(entry).Error
}

func (r *auditLogRepository) FindRecent(db *gorm.DB, limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
