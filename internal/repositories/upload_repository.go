package repositories

import (
	"simbi_backend/internal/models"

	"gorm.io/gorm"
)

type UploadRepository interface {
	Create(db *gorm.DB, upload *models.Upload) error
	FindByID(db *gorm.DB, id string) (*models.Upload, error)
	FindByUser(db *gorm.DB, userID string) ([]models.Upload, error)
	Delete(db *gorm.DB, id string) error
}

type uploadRepository struct{}

func NewUploadRepository() UploadRepository {
	return &uploadRepository{}
}

func (r *uploadRepository) Create(db *gorm.DB, upload *models.Upload) error {
	return db.Create(upload).Error
}

func (r *uploadRepository) FindByID(db *gorm.DB, id string) (*models.Upload, error) {
	var upload models.Upload
	if err := db.First(&upload, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrUploadNotFound)
	}
	return &upload, nil
}

func (r *uploadRepository) FindByUser(db *gorm.DB, userID string) ([]models.Upload, error) {
	var uploads []models.Upload
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&uploads).Error
	return uploads, err
}

func (r *uploadRepository) Delete(db *gorm.DB, id string) error {
	return db.Delete(&models.Upload{}, "id = ?", id).Error
}
