package dto

import (
	"time"

	"simbi_backend/internal/models"
)

type CreateServiceRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=200"`
	Description string   `json:"description" validate:"required,min=10,max=5000"`
	Kind        string   `json:"kind" validate:"required,is-service-kind"`
	TradingType string   `json:"tradingType" validate:"required,is-trading-type"`
	SimbiPrice  *int     `json:"simbiPrice,omitempty" validate:"omitempty,gte=0,lte=1000000"`
	USDPrice    *float64 `json:"usdPrice,omitempty" validate:"omitempty,gte=0,lte=1000000"`
	CategoryID  *string  `json:"categoryId,omitempty" validate:"omitempty,uuid"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=30"`
	Images      []string `json:"images,omitempty" validate:"omitempty,max=10,dive,max=500"`
	Lat         *float64 `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lon         *float64 `json:"lon,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

type UpdateServiceRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=10,max=5000"`
	Kind        *string  `json:"kind,omitempty" validate:"omitempty,is-service-kind"`
	TradingType *string  `json:"tradingType,omitempty" validate:"omitempty,is-trading-type"`
	SimbiPrice  *int     `json:"simbiPrice,omitempty" validate:"omitempty,gte=0,lte=1000000"`
	USDPrice    *float64 `json:"usdPrice,omitempty" validate:"omitempty,gte=0,lte=1000000"`
	CategoryID  *string  `json:"categoryId,omitempty" validate:"omitempty,uuid"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=30"`
	Images      []string `json:"images,omitempty" validate:"omitempty,max=10,dive,max=500"`
	Lat         *float64 `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lon         *float64 `json:"lon,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// SearchServicesRequest is bound from the query string.
type SearchServicesRequest struct {
	Query       string   `form:"q" json:"q" validate:"omitempty,max=200"`
	Kind        string   `form:"kind" json:"kind" validate:"omitempty,is-service-kind"`
	TradingType string   `form:"tradingType" json:"tradingType" validate:"omitempty,is-trading-type"`
	CategoryID  string   `form:"categoryId" json:"categoryId" validate:"omitempty,uuid"`
	Lat         *float64 `form:"lat" json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon         *float64 `form:"lon" json:"lon" validate:"omitempty,gte=-180,lte=180"`
	Radius      *float64 `form:"radius" json:"radius" validate:"omitempty,gt=0,lte=500"`
	Page        int      `form:"page" json:"page" validate:"omitempty,min=1"`
	Limit       int      `form:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
	SortBy      string   `form:"sortBy" json:"sortBy" validate:"omitempty,oneof=createdAt updatedAt title simbiPrice usdPrice"`
	SortOrder   string   `form:"sortOrder" json:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type FlagServiceRequest struct {
	Reason  string `json:"reason" validate:"required,min=3,max=200"`
	Details string `json:"details,omitempty" validate:"omitempty,max=2000"`
}

type ServiceResponse struct {
	ID          string              `json:"id"`
	UserID      string              `json:"userId"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Kind        models.ServiceKind  `json:"kind"`
	TradingType models.TradingType  `json:"tradingType"`
	SimbiPrice  *int                `json:"simbiPrice,omitempty"`
	USDPrice    *float64            `json:"usdPrice,omitempty"`
	CategoryID  *string             `json:"categoryId,omitempty"`
	Tags        []string            `json:"tags"`
	Images      []string            `json:"images"`
	Lat         *float64            `json:"lat,omitempty"`
	Lon         *float64            `json:"lon,omitempty"`
	State       models.ServiceState `json:"state"`
	ViewCount   int                 `json:"viewCount"`
	LikeCount   int                 `json:"likeCount"`
	PublishedAt *time.Time          `json:"publishedAt,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	User        *PublicUserResponse `json:"user,omitempty"`
}

func NewServiceResponse(s *models.Service) *ServiceResponse {
	resp := &ServiceResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		Title:       s.Title,
		Description: s.Description,
		Kind:        s.Kind,
		TradingType: s.TradingType,
		SimbiPrice:  s.SimbiPrice,
		USDPrice:    s.USDPrice,
		CategoryID:  s.CategoryID,
		Tags:        nonNilStrings(s.Tags),
		Images:      nonNilStrings(s.Images),
		Lat:         s.Lat,
		Lon:         s.Lon,
		State:       s.State,
		ViewCount:   s.ViewCount,
		LikeCount:   s.LikeCount,
		PublishedAt: s.PublishedAt,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.User != nil {
		resp.User = NewPublicUserResponse(s.User)
	}
	return resp
}

func NewServiceResponses(list []models.Service) []*ServiceResponse {
	out := make([]*ServiceResponse, 0, len(list))
	for i := range list {
		out = append(out, NewServiceResponse(&list[i]))
	}
	return out
}

type ServiceListResponse struct {
	Services []*ServiceResponse `json:"services"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Pages    int                `json:"pages"`
}

type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}
