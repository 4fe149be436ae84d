package repositories

import (
	"time"

	"simbi_backend/internal/models"

	"gorm.io/gorm"
)

type TalkRepository interface {
	Create(db *gorm.DB, talk *models.Talk) error
	// FindByID preloads both participants and the service.
	FindByID(db *gorm.DB, id string) (*models.Talk, error)
	// FindByUser lists the user's non-archived talks, most recently active first.
	FindByUser(db *gorm.DB, userID string) ([]models.Talk, error)
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error

	CreateMessage(db *gorm.DB, msg *models.TalkMessage) error
	FindMessages(db *gorm.DB, talkID string) ([]models.TalkMessage, error)
	FindLastMessage(db *gorm.DB, talkID string) (*models.TalkMessage, error)
	CountMessages(db *gorm.DB) (int64, error)

	CreateOffer(db *gorm.DB, offer *models.Offer) error
	FindOfferByID(db *gorm.DB, id string) (*models.Offer, error)
	// AnswerOffer moves a pending offer to status. It reports false when the
	// offer was no longer pending, leaving the row untouched.
	AnswerOffer(db *gorm.DB, id string, status models.OfferStatus, acceptedAt *time.Time) (bool, error)
	FindOffersByTalk(db *gorm.DB, talkID string) ([]models.Offer, error)

	Count(db *gorm.DB) (int64, error)
}

type talkRepository struct{}

func NewTalkRepository() TalkRepository {
	return &talkRepository{}
}

func (r *talkRepository) Create(db *gorm.DB, talk *models.Talk) error {
	return db.Omit("Sender", "Receiver", "Service", "Messages", "Offers").Create(talk).Error
}

func (r *talkRepository) FindByID(db *gorm.DB, id string) (*models.Talk, error) {
	var talk models.Talk
	err := db.Preload("Sender").Preload("Receiver").Preload("Service").
		First(&talk, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrTalkNotFound)
	}
	return &talk, nil
}

func (r *talkRepository) FindByUser(db *gorm.DB, userID string) ([]models.Talk, error) {
	var talks []models.Talk
	err := db.Preload("Sender").Preload("Receiver").Preload("Service").
		Where("(sender_id = ? AND sender_archived = ?) OR (receiver_id = ? AND receiver_archived = ?)",
			userID, false, userID, false).
		Order("updated_at DESC").
		Find(&talks).Error
	return talks, err
}

func (r *talkRepository) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.Talk{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTalkNotFound
	}
	return nil
}

func (r *talkRepository) CreateMessage(db *gorm.DB, msg *models.TalkMessage) error {
	return db.Omit("Sender").Create(msg).Error
}

func (r *talkRepository) FindMessages(db *gorm.DB, talkID string) ([]models.TalkMessage, error) {
	var messages []models.TalkMessage
	err := db.Preload("Sender").
		Where("talk_id = ?", talkID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *talkRepository) FindLastMessage(db *gorm.DB, talkID string) (*models.TalkMessage, error) {
	var msg models.TalkMessage
	err := db.Where("talk_id = ?", talkID).Order("created_at DESC").First(&msg).Error
	if err != nil {
		return nil, notFound(err, ErrTalkNotFound)
	}
	return &msg, nil
}

func (r *talkRepository) CountMessages(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.TalkMessage{}).Count(&count).Error
	return count, err
}

func (r *talkRepository) CreateOffer(db *gorm.DB, offer *models.Offer) error {
	return db.Create(offer).Error
}

func (r *talkRepository) FindOfferByID(db *gorm.DB, id string) (*models.Offer, error) {
	var offer models.Offer
	if err := db.First(&offer, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrOfferNotFound)
	}
	return &offer, nil
}

func (r *talkRepository) AnswerOffer(db *gorm.DB, id string, status models.OfferStatus, acceptedAt *time.Time) (bool, error) {
	fields := map[string]interface{}{"status": status}
	if acceptedAt != nil {
		fields["accepted_at"] = *acceptedAt
	}
	result := db.Model(&models.Offer{}).
		Where("id = ? AND status = ?", id, models.OfferStatusPending).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *talkRepository) FindOffersByTalk(db *gorm.DB, talkID string) ([]models.Offer, error) {
	var offers []models.Offer
	err := db.Where("talk_id = ?", talkID).Order("created_at ASC").Find(&offers).Error
	return offers, err
}

func (r *talkRepository) Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.Talk{}).Count(&count).Error
	return count, err
}
