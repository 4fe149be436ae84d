package repositories

import (
	"strings"

	"simbi_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MilesPerDegree approximates one degree of latitude.
const MilesPerDegree = 69.0

// ServiceSearchCriteria drives the public search endpoint.
type ServiceSearchCriteria struct {
	Query       string
	Kind        models.ServiceKind
	TradingType models.TradingType
	CategoryID  string
	Lat         *float64
	Lon         *float64
	Radius      *float64 // miles
	Page        int
	Limit       int
	SortBy      string
	SortOrder   string
}

// sortColumns maps API sort keys to columns. Anything else is rejected upstream.
var sortColumns = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"title":      "title",
	"simbiPrice": "simbi_price",
	"usdPrice":   "usd_price",
}

type ServiceRepository interface {
	Create(db *gorm.DB, service *models.Service) error
	// FindByID ignores deleted services.
	FindByID(db *gorm.DB, id string) (*models.Service, error)
	// FindByIDAny includes deleted services (moderation).
	FindByIDAny(db *gorm.DB, id string) (*models.Service, error)
	Update(db *gorm.DB, service *models.Service) error
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	IncrementViewCount(db *gorm.DB, id string) error
	AdjustLikeCount(db *gorm.DB, id string, delta int) error
	Search(db *gorm.DB, criteria ServiceSearchCriteria) ([]models.Service, int64, error)
	FindByUser(db *gorm.DB, userID string) ([]models.Service, error)
	FindRecentActiveByUser(db *gorm.DB, userID string, limit int) ([]models.Service, error)
	CountByUser(db *gorm.DB, userID string) (int64, error)
	CountByState(db *gorm.DB, state models.ServiceState) (int64, error)
	Count(db *gorm.DB) (int64, error)

	// AddFavorite returns false when the favorite already existed.
	AddFavorite(db *gorm.DB, userID, serviceID string) (bool, error)
	// RemoveFavorite returns false when there was no favorite.
	RemoveFavorite(db *gorm.DB, userID, serviceID string) (bool, error)
	FindFavorites(db *gorm.DB, userID string) ([]models.Service, error)
}

type serviceRepository struct{}

func NewServiceRepository() ServiceRepository {
	return &serviceRepository{}
}

func (r *serviceRepository) Create(db *gorm.DB, service *models.Service) error {
	return db.Create(service).Error
}

func (r *serviceRepository) FindByID(db *gorm.DB, id string) (*models.Service, error) {
	var service models.Service
	err := db.Preload("User").Preload("Category").
		Where("state <> ?", models.ServiceStateDeleted).
		First(&service, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrServiceNotFound)
	}
	return &service, nil
}

func (r *serviceRepository) FindByIDAny(db *gorm.DB, id string) (*models.Service, error) {
	var service models.Service
	if err := db.First(&service, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrServiceNotFound)
	}
	return &service, nil
}

func (r *serviceRepository) Update(db *gorm.DB, service *models.Service) error {
	return db.Omit(clause.Associations).Save(service).Error
}

func (r *serviceRepository) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.Service{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// IncrementViewCount uses UpdateColumn so updated_at is not touched.
func (r *serviceRepository) IncrementViewCount(db *gorm.DB, id string) error {
	return db.Model(&models.Service{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// AdjustLikeCount never lets like_count drop below zero.
func (r *serviceRepository) AdjustLikeCount(db *gorm.DB, id string, delta int) error {
	query := db.Model(&models.Service{}).Where("id = ?", id)
	if delta < 0 {
		query = query.Where("like_count >= ?", -delta)
	}
	return query.UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error
}

func (r *serviceRepository) Search(db *gorm.DB, criteria ServiceSearchCriteria) ([]models.Service, int64, error) {
	query := db.Model(&models.Service{}).Where("state = ?", models.ServiceStateActive)

	if q := strings.TrimSpace(criteria.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if criteria.Kind != "" {
		query = query.Where("kind = ?", criteria.Kind)
	}
	if criteria.TradingType != "" {
		// "both" listings match either currency filter.
		if criteria.TradingType == models.TradingTypeBoth {
			query = query.Where("trading_type = ?", criteria.TradingType)
		} else {
			query = query.Where("trading_type IN ?", []models.TradingType{criteria.TradingType, models.TradingTypeBoth})
		}
	}
	if criteria.CategoryID != "" {
		query = query.Where("category_id = ?", criteria.CategoryID)
	}
	if criteria.Lat != nil && criteria.Lon != nil && criteria.Radius != nil {
		delta := *criteria.Radius / MilesPerDegree
		query = query.
			Where("lat BETWEEN ? AND ?", *criteria.Lat-delta, *criteria.Lat+delta).
			Where("lon BETWEEN ? AND ?", *criteria.Lon-delta, *criteria.Lon+delta)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[criteria.SortBy]
	if !ok {
		column = "created_at"
	}
	desc := !strings.EqualFold(criteria.SortOrder, "asc")

	var services []models.Service
	err := query.Preload("User").
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Scopes(paginate(criteria.Page, criteria.Limit)).
		Find(&services).Error
	return services, total, err
}

func (r *serviceRepository) FindByUser(db *gorm.DB, userID string) ([]models.Service, error) {
	var services []models.Service
	err := db.Where("user_id = ? AND state <> ?", userID, models.ServiceStateDeleted).
		Order("created_at DESC").
		Find(&services).Error
	return services, err
}

func (r *serviceRepository) FindRecentActiveByUser(db *gorm.DB, userID string, limit int) ([]models.Service, error) {
	var services []models.Service
	err := db.Where("user_id = ? AND state = ?", userID, models.ServiceStateActive).
		Order("created_at DESC").
		Limit(limit).
		Find(&services).Error
	return services, err
}

func (r *serviceRepository) CountByUser(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Service{}).
		Where("user_id = ? AND state <> ?", userID, models.ServiceStateDeleted).
		Count(&count).Error
	return count, err
}

func (r *serviceRepository) CountByState(db *gorm.DB, state models.ServiceState) (int64, error) {
	var count int64
	err := db.Model(&models.Service{}).Where("state = ?", state).Count(&count).Error
	return count, err
}

func (r *serviceRepository) Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.Service{}).Where("state <> ?", models.ServiceStateDeleted).Count(&count).Error
	return count, err
}

func (r *serviceRepository) AddFavorite(db *gorm.DB, userID, serviceID string) (bool, error) {
	fav := &models.Favorite{UserID: userID, ServiceID: serviceID}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(fav)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *serviceRepository) RemoveFavorite(db *gorm.DB, userID, serviceID string) (bool, error) {
	result := db.Where("user_id = ? AND service_id = ?", userID, serviceID).Delete(&models.Favorite{})
	return result.RowsAffected > 0, result.Error
}

// FindFavorites returns liked services that are still visible, most recently liked first.
func (r *serviceRepository) FindFavorites(db *gorm.DB, userID string) ([]models.Service, error) {
	var services []models.Service
	err := db.Joins("JOIN favorites ON favorites.service_id = services.id").
		Where("favorites.user_id = ?", userID).
		Where("services.state = ?", models.ServiceStateActive).
		Order("favorites.created_at DESC").
		Preload("User").
		Find(&services).Error
	return services, err
}
