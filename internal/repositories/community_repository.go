package repositories

import (
	"simbi_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityRepository interface {
	Create(db *gorm.DB, community *models.Community) error
	FindByID(db *gorm.DB, id string) (*models.Community, error)
	// List orders featured communities first, then by name, with member counts filled in.
	List(db *gorm.DB) ([]models.Community, error)
	// Join is idempotent; it reports whether a new membership was created.
	Join(db *gorm.DB, communityID, userID string) (bool, error)
	Leave(db *gorm.DB, communityID, userID string) (bool, error)
	CountMembers(db *gorm.DB, communityID string) (int64, error)
	IsMember(db *gorm.DB, communityID, userID string) (bool, error)
}

type communityRepository struct{}

func NewCommunityRepository() CommunityRepository {
	return &communityRepository{}
}

func (r *communityRepository) Create(db *gorm.DB, community *models.Community) error {
	return db.Create(community).Error
}

func (r *communityRepository) FindByID(db *gorm.DB, id string) (*models.Community, error) {
	var community models.Community
	if err := db.First(&community, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrCommunityNotFound)
	}
	count, err := r.CountMembers(db, id)
	if err != nil {
		return nil, err
	}
	community.MemberCount = count
	return &community, nil
}

func (r *communityRepository) List(db *gorm.DB) ([]models.Community, error) {
	var communities []models.Community
	if err := db.Order("featured DESC").Order("name ASC").Find(&communities).Error; err != nil {
		return nil, err
	}
	if len(communities) == 0 {
		return communities, nil
	}

	var rows []struct {
		CommunityID string
		Total       int64
	}
	err := db.Model(&models.CommunityMember{}).
		Select("community_id, COUNT(*) AS total").
		Group("community_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CommunityID] = row.Total
	}
	for i := range communities {
		communities[i].MemberCount = counts[communities[i].ID]
	}
	return communities, nil
}

func (r *communityRepository) Join(db *gorm.DB, communityID, userID string) (bool, error) {
	member := &models.CommunityMember{CommunityID: communityID, UserID: userID}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(member)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *communityRepository) Leave(db *gorm.DB, communityID, userID string) (bool, error) {
	result := db.Where("community_id = ? AND user_id = ?", communityID, userID).Delete(&models.CommunityMember{})
	return result.RowsAffected > 0, result.Error
}

func (r *communityRepository) CountMembers(db *gorm.DB, communityID string) (int64, error) {
	var count int64
	err := db.Model(&models.CommunityMember{}).Where("community_id = ?", communityID).Count(&count).Error
	return count, err
}

func (r *communityRepository) IsMember(db *gorm.DB, communityID, userID string) (bool, error) {
	var count int64
	err := db.Model(&models.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, err
}
