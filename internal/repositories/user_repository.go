package repositories

import (
	"strings"
	"time"

	"simbi_backend/internal/models"

	"gorm.io/gorm"
)

// UserCriteria filters the admin user listing.
type UserCriteria struct {
	Role     models.UserRole
	Query    string
	Page     int
	PageSize int
}

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByUsername(db *gorm.DB, username string) (*models.User, error)
	UsernameExists(db *gorm.DB, username string) (bool, error)
	Update(db *gorm.DB, user *models.User) error
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	TouchLastSeen(db *gorm.DB, id string, at time.Time) error
	List(db *gorm.DB, criteria UserCriteria) ([]models.User, int64, error)
	CountByStatus(db *gorm.DB, status models.UserStatus) (int64, error)
	Count(db *gorm.DB) (int64, error)

	CreateAccount(db *gorm.DB, account *models.Account) error
	FindAccount(db *gorm.DB, userID string) (*models.Account, error)
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	if err := db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID preloads the account so balances are always available.
func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.Preload("Account").First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Preload("Account").Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) UsernameExists(db *gorm.DB, username string) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) Update(db *gorm.DB, user *models.User) error {
	return db.Omit("Account").Save(user).Error
}

func (r *userRepository) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) TouchLastSeen(db *gorm.DB, id string, at time.Time) error {
	return db.Model(&models.User{}).Where("id = ?", id).UpdateColumn("last_seen_at", at).Error
}

func (r *userRepository) List(db *gorm.DB, criteria UserCriteria) ([]models.User, int64, error) {
	query := db.Model(&models.User{})
	if criteria.Role != "" {
		query = query.Where("role = ?", criteria.Role)
	}
	if q := strings.TrimSpace(criteria.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(username) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.Preload("Account").
		Order("created_at DESC").
		Scopes(paginate(criteria.Page, criteria.PageSize)).
		Find(&users).Error
	return users, total, err
}

func (r *userRepository) CountByStatus(db *gorm.DB, status models.UserStatus) (int64, error) {
	var count int64
	err := db.Model(&models.User{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *userRepository) Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *userRepository) CreateAccount(db *gorm.DB, account *models.Account) error {
	return db.Create(account).Error
}

func (r *userRepository) FindAccount(db *gorm.DB, userID string) (*models.Account, error) {
	var account models.Account
	if err := db.Where("user_id = ?", userID).First(&account).Error; err != nil {
		return nil, notFound(err, ErrAccountNotFound)
	}
	return &account, nil
}
