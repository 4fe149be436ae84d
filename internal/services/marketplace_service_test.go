package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simbi_backend/internal/models"
	"simbi_backend/internal/services/dto"
	"simbi_backend/internal/testutil"
	"simbi_backend/pkg/apperrors"
)

func TestLikeService_CountsOncePerUser(t *testing.T) {
	f := newFixture(t)
	owner := testutil.CreateUser(t, f.db, &models.User{}, "")
	fan := testutil.CreateUser(t, f.db, &models.User{}, "")
	other := testutil.CreateUser(t, f.db, &models.User{}, "")
	service := testutil.CreateService(t, f.db, owner.ID, "Pottery class")
	market := f.svc.MarketplaceService

	for i := 0; i < 3; i++ {
		res, err := market.LikeService(f.db, fan.ID, service.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, res.LikeCount)
	}

	res, err := market.LikeService(f.db, other.ID, service.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.LikeCount)

	favorites, err := market.GetFavorites(f.db, fan.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, service.ID, favorites[0].ID)

	for i := 0; i < 2; i++ {
		res, err = market.UnlikeService(f.db, fan.ID, service.ID)
		require.NoError(t, err)
		assert.False(t, res.Liked)
		assert.Equal(t, 1, res.LikeCount)
	}

	_, err = market.LikeService(f.db, fan.ID, "missing")
	assert.ErrorIs(t, err, apperrors.ErrServiceNotFound)
}

func TestFlagService_DeduplicatesOpenFlags(t *testing.T) {
	f := newFixture(t)
	owner := testutil.CreateUser(t, f.db, &models.User{}, "")
	reporter := testutil.CreateUser(t, f.db, &models.User{}, "")
	service := testutil.CreateService(t, f.db, owner.ID, "Suspicious listing")
	market := f.svc.MarketplaceService

	first, err := market.FlagService(f.db, reporter.ID, service.ID, &dto.FlagServiceRequest{Reason: "spam"})
	require.NoError(t, err)
	second, err := market.FlagService(f.db, reporter.ID, service.ID, &dto.FlagServiceRequest{Reason: "still spam"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, f.db.Model(&models.Flag{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSearchServices_TradingTypeBothMatchesEither(t *testing.T) {
	f := newFixture(t)
	owner := testutil.CreateUser(t, f.db, &models.User{}, "")
	simbi := testutil.CreateService(t, f.db, owner.ID, "Simbi only")
	both := testutil.CreateService(t, f.db, owner.ID, "Either currency")
	usd := testutil.CreateService(t, f.db, owner.ID, "Dollars only")
	require.NoError(t, f.db.Model(both).Update("trading_type", models.TradingTypeBoth).Error)
	require.NoError(t, f.db.Model(usd).Update("trading_type", models.TradingTypeUSD).Error)
	market := f.svc.MarketplaceService

	ids := func(list *dto.ServiceListResponse) []string {
		out := make([]string, 0, len(list.Services))
		for _, s := range list.Services {
			out = append(out, s.ID)
		}
		return out
	}

	list, err := market.SearchServices(f.db, &dto.SearchServicesRequest{TradingType: string(models.TradingTypeSimbi)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{simbi.ID, both.ID}, ids(list))

	list, err = market.SearchServices(f.db, &dto.SearchServicesRequest{TradingType: string(models.TradingTypeUSD)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{usd.ID, both.ID}, ids(list))

	list, err = market.SearchServices(f.db, &dto.SearchServicesRequest{TradingType: string(models.TradingTypeBoth)})
	require.NoError(t, err)
	assert.Equal(t, []string{both.ID}, ids(list))

	list, err = market.SearchServices(f.db, &dto.SearchServicesRequest{Query: "DOLLARS"})
	require.NoError(t, err)
	assert.Equal(t, []string{usd.ID}, ids(list))
}

func TestPublishService_Rules(t *testing.T) {
	f := newFixture(t)
	owner := testutil.CreateUser(t, f.db, &models.User{}, "")
	stranger := testutil.CreateUser(t, f.db, &models.User{}, "")
	market := f.svc.MarketplaceService

	created, err := market.CreateService(f.db, owner.ID, &dto.CreateServiceRequest{
		Title:       "  Dog walking ",
		Description: "Morning walks around the park",
		Kind:        string(models.ServiceKindOffer),
		TradingType: string(models.TradingTypeSimbi),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dog walking", created.Title)
	assert.Equal(t, models.ServiceStateDraft, created.State)

	_, err = market.PublishService(f.db, stranger.ID, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotServiceOwner)

	published, err := market.PublishService(f.db, owner.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceStateActive, published.State)
	require.NotNil(t, published.PublishedAt)

	require.NoError(t, f.db.Model(&models.Service{}).Where("id = ?", created.ID).
		Update("state", models.ServiceStateHidden).Error)
	_, err = market.PublishService(f.db, owner.ID, created.ID)
	assert.Error(t, err)
}

func TestDeleteService_ModeratorMayDeleteAny(t *testing.T) {
	f := newFixture(t)
	owner := testutil.CreateUser(t, f.db, &models.User{}, "")
	moderator := testutil.CreateUser(t, f.db, &models.User{Role: models.UserRoleModerator}, "")
	stranger := testutil.CreateUser(t, f.db, &models.User{}, "")
	service := testutil.CreateService(t, f.db, owner.ID, "Listing")
	market := f.svc.MarketplaceService

	err := market.DeleteService(f.db, stranger.ID, models.UserRoleUser, service.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotServiceOwner)

	require.NoError(t, market.DeleteService(f.db, moderator.ID, models.UserRoleModerator, service.ID))

	_, err = market.GetService(f.db, service.ID)
	assert.ErrorIs(t, err, apperrors.ErrServiceNotFound)
}
