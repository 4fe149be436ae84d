package repositories

import (
	"simbi_backend/internal/models"

	"gorm.io/gorm"
)

type FlagRepository interface {
	Create(db *gorm.DB, flag *models.Flag) error
	FindByID(db *gorm.DB, id string) (*models.Flag, error)
	// FindOpen returns the reporter's unresolved flag on a service, if any.
	FindOpen(db *gorm.DB, reporterID, serviceID string) (*models.Flag, error)
	List(db *gorm.DB, includeResolved bool, page, pageSize int) ([]models.Flag, int64, error)
	Update(db *gorm.DB, flag *models.Flag) error
	CountOpen(db *gorm.DB) (int64, error)
}

type flagRepository struct{}

func NewFlagRepository() FlagRepository {
	return &flagRepository{}
}

func (r *flagRepository) Create(db *gorm.DB, flag *models.Flag) error {
	return db.Create(flag).Error
}

func (r *flagRepository) FindByID(db *gorm.DB, id string) (*models.Flag, error) {
	var flag models.Flag
	if err := db.First(&flag, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrFlagNotFound)
	}
	return &flag, nil
}

func (r *flagRepository) FindOpen(db *gorm.DB, reporterID, serviceID string) (*models.Flag, error) {
	var flag models.Flag
	err := db.Where("reporter_id = ? AND service_id = ? AND resolved = ?", reporterID, serviceID, false).
		First(&flag).Error
	if err != nil {
		return nil, notFound(err, ErrFlagNotFound)
	}
	return &flag, nil
}

func (r *flagRepository) List(db *gorm.DB, includeResolved bool, page, pageSize int) ([]models.Flag, int64, error) {
	query := db.Model(&models.Flag{})
	if !includeResolved {
		query = query.Where("resolved = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var flags []models.Flag
	err := query.Preload("Service").
		Order("created_at DESC").
		Scopes(paginate(page, pageSize)).
		Find(&flags).Error
	return flags, total, err
}

func (r *flagRepository) Update(db *gorm.DB, flag *models.Flag) error {
	return db.Omit("Service").Save(flag).Error
}

func (r *flagRepository) CountOpen(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.Flag{}).Where("resolved = ?", false).Count(&count).Error
	return count, err
}
