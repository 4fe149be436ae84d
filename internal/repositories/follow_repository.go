package repositories

import (
	"simbi_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository interface {
	// Follow returns false when the relation already existed.
	Follow(db *gorm.DB, followerID, followedID string) (bool, error)
	// Unfollow returns false when there was nothing to delete.
	Unfollow(db *gorm.DB, followerID, followedID string) (bool, error)
	FindFollowers(db *gorm.DB, userID string) ([]models.User, error)
	FindFollowing(db *gorm.DB, userID string) ([]models.User, error)
	CountFollowers(db *gorm.DB, userID string) (int64, error)
	CountFollowing(db *gorm.DB, userID string) (int64, error)
	FindSuggested(db *gorm.DB, userID string, limit int) ([]models.User, error)
}

type followRepository struct{}

func NewFollowRepository() FollowRepository {
	return &followRepository{}
}

func (r *followRepository) Follow(db *gorm.DB, followerID, followedID string) (bool, error) {
	follow := &models.Follow{FollowerID: followerID, FollowedID: followedID}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) Unfollow(db *gorm.DB, followerID, followedID string) (bool, error) {
	result := db.Where("follower_id = ? AND followed_id = ?", followerID, followedID).Delete(&models.Follow{})
	return result.RowsAffected > 0, result.Error
}

func (r *followRepository) FindFollowers(db *gorm.DB, userID string) ([]models.User, error) {
	var users []models.User
	err := db.Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *followRepository) FindFollowing(db *gorm.DB, userID string) ([]models.User, error) {
	var users []models.User
	err := db.Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *followRepository) CountFollowers(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Follow{}).Where("followed_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowing(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

// FindSuggested returns active users that userID does not follow yet, best rated first.
func (r *followRepository) FindSuggested(db *gorm.DB, userID string, limit int) ([]models.User, error) {
	following := db.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", userID)

	var users []models.User
	err := db.Where("id <> ?", userID).
		Where("status = ?", models.UserStatusActive).
		Where("id NOT IN (?)", following).
		Order("rating DESC").
		Order("review_count DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
