package repositories

import (
	"simbi_backend/internal/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	// Create returns ErrReviewAlreadyExists on a duplicate (reviewer, reviewee, service).
	Create(db *gorm.DB, review *models.Review) error
	Exists(db *gorm.DB, reviewerID, revieweeID, serviceID string) (bool, error)
	FindPublishedByReviewee(db *gorm.DB, revieweeID string, page, pageSize int) ([]models.Review, int64, error)
	// RatingSummary averages published reviews only.
	RatingSummary(db *gorm.DB, revieweeID string) (avg float64, count int64, err error)
}

type reviewRepository struct{}

func NewReviewRepository() ReviewRepository {
	return &reviewRepository{}
}

func (r *reviewRepository) Create(db *gorm.DB, review *models.Review) error {
	if err := db.Omit("Reviewer").Create(review).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrReviewAlreadyExists
		}
		return err
	}
	return nil
}

func (r *reviewRepository) Exists(db *gorm.DB, reviewerID, revieweeID, serviceID string) (bool, error) {
	var count int64
	err := db.Model(&models.Review{}).
		Where("reviewer_id = ? AND reviewee_id = ? AND service_id = ?", reviewerID, revieweeID, serviceID).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepository) FindPublishedByReviewee(db *gorm.DB, revieweeID string, page, pageSize int) ([]models.Review, int64, error) {
	query := db.Model(&models.Review{}).
		Where("reviewee_id = ? AND status = ?", revieweeID, models.ReviewStatusPublished)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := query.Preload("Reviewer").
		Order("created_at DESC").
		Scopes(paginate(page, pageSize)).
		Find(&reviews).Error
	return reviews, total, err
}

func (r *reviewRepository) RatingSummary(db *gorm.DB, revieweeID string) (float64, int64, error) {
	var row struct {
		Avg   *float64
		Count int64
	}
	err := db.Model(&models.Review{}).
		Select("AVG(rating) AS avg, COUNT(*) AS count").
		Where("reviewee_id = ? AND status = ?", revieweeID, models.ReviewStatusPublished).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	if row.Avg == nil {
		return 0, row.Count, nil
	}
	return *row.Avg, row.Count, nil
}
