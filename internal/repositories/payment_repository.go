package repositories

import (
	"simbi_backend/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	CreateTransaction(db *gorm.DB, tx *models.PaymentTransaction) error
	FindTransactionByIntent(db *gorm.DB, intentID string) (*models.PaymentTransaction, error)
	UpdateTransactionStatus(db *gorm.DB, intentID string, status models.PaymentStatus) error
	FindTransactionsByUser(db *gorm.DB, userID string, page, pageSize int) ([]models.PaymentTransaction, int64, error)

	CreateSubscription(db *gorm.DB, sub *models.PaymentSubscription) error
	FindSubscription(db *gorm.DB, userID, gatewayID string) (*models.PaymentSubscription, error)
	UpdateSubscription(db *gorm.DB, sub *models.PaymentSubscription) error
}

type paymentRepository struct{}

func NewPaymentRepository() PaymentRepository {
	return &paymentRepository{}
}

func (r *paymentRepository) CreateTransaction(db *gorm.DB, tx *models.PaymentTransaction) error {
	return db.Create(tx).Error
}

func (r *paymentRepository) FindTransactionByIntent(db *gorm.DB, intentID string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	if err := db.Where("payment_intent_id = ?", intentID).First(&tx).Error; err != nil {
		return nil, notFound(err, ErrTransactionNotFound)
	}
	return &tx, nil
}

func (r *paymentRepository) UpdateTransactionStatus(db *gorm.DB, intentID string, status models.PaymentStatus) error {
	result := db.Model(&models.PaymentTransaction{}).
		Where("payment_intent_id = ?", intentID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *paymentRepository) FindTransactionsByUser(db *gorm.DB, userID string, page, pageSize int) ([]models.PaymentTransaction, int64, error) {
	query := db.Model(&models.PaymentTransaction{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []models.PaymentTransaction
	err := query.Order("created_at DESC").Scopes(paginate(page, pageSize)).Find(&txs).Error
	return txs, total, err
}

func (r *paymentRepository) CreateSubscription(db *gorm.DB, sub *models.PaymentSubscription) error {
	return db.Create(sub).Error
}

func (r *paymentRepository) FindSubscription(db *gorm.DB, userID, gatewayID string) (*models.PaymentSubscription, error) {
	var sub models.PaymentSubscription
	err := db.Where("user_id = ? AND gateway_subscription_id = ?", userID, gatewayID).First(&sub).Error
	if err != nil {
		return nil, notFound(err, ErrSubscriptionNotFound)
	}
	return &sub, nil
}

func (r *paymentRepository) UpdateSubscription(db *gorm.DB, sub *models.PaymentSubscription) error {
	return db.Save(sub).Error
}
