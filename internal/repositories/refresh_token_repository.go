package repositories

import (
	"time"

	"simbi_backend/internal/models"

	"gorm.io/gorm"
)

type RefreshTokenRepository interface {
	Create(db *gorm.DB, token *models.RefreshToken) error
	FindByHash(db *gorm.DB, tokenHash string) (*models.RefreshToken, error)
	DeleteByHash(db *gorm.DB, tokenHash string) error
	// DeleteSession removes one token owned by userID.
	DeleteSession(db *gorm.DB, userID, id string) error
	DeleteByUserID(db *gorm.DB, userID string) (int64, error)
	DeleteExpired(db *gorm.DB, now time.Time) (int64, error)
	FindActiveByUserID(db *gorm.DB, userID string, now time.Time) ([]models.RefreshToken, error)
}

type refreshTokenRepository struct{}

func NewRefreshTokenRepository() RefreshTokenRepository {
	return &refreshTokenRepository{}
}

func (r *refreshTokenRepository) Create(db *gorm.DB, token *models.RefreshToken) error {
	return db.Create(token).Error
}

func (r *refreshTokenRepository) FindByHash(db *gorm.DB, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := db.Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
		return nil, notFound(err, ErrRefreshTokenNotFound)
	}
	return &token, nil
}

func (r *refreshTokenRepository) DeleteByHash(db *gorm.DB, tokenHash string) error {
	result := db.Where("token_hash = ?", tokenHash).Delete(&models.RefreshToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}

func (r *refreshTokenRepository) DeleteSession(db *gorm.DB, userID, id string) error {
	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.RefreshToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}

func (r *refreshTokenRepository) DeleteByUserID(db *gorm.DB, userID string) (int64, error) {
	result := db.Where("user_id = ?", userID).Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

func (r *refreshTokenRepository) DeleteExpired(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Where("expires_at < ?", now).Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

func (r *refreshTokenRepository) FindActiveByUserID(db *gorm.DB, userID string, now time.Time) ([]models.RefreshToken, error) {
	var tokens []models.RefreshToken
	err := db.Where("user_id = ? AND expires_at > ?", userID, now).
		Order("created_at DESC").
		Find(&tokens).Error
	return tokens, err
}
