package dto

import "simbi_backend/internal/models"

type AdminUserQuery struct {
	Role  string `form:"role" validate:"omitempty,is-user-role"`
	Query string `form:"q" validate:"omitempty,max=200"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,is-user-role"`
}

type BanUserRequest struct {
	Reason   string `json:"reason" validate:"required,min=3,max=500"`
	Duration *int   `json:"duration,omitempty" validate:"omitempty,min=1,max=3650"` // days
}

type ResolveFlagRequest struct {
	Action string `json:"action" validate:"required,oneof=dismissed removed warned"`
	Notes  string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type ModerateContentRequest struct {
	Action string `json:"action" validate:"required,oneof=hide delete restore"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type AdminUserListResponse struct {
	Users []*UserResponse `json:"users"`
	Pagination
}

type FlagListResponse struct {
	Flags []models.Flag `json:"flags"`
	Pagination
}

type SystemStatsResponse struct {
	Users struct {
		Total  int64 `json:"total"`
		Active int64 `json:"active"`
		Banned int64 `json:"banned"`
	} `json:"users"`
	Services struct {
		Total  int64 `json:"total"`
		Active int64 `json:"active"`
	} `json:"services"`
	Talks       int64 `json:"talks"`
	Messages    int64 `json:"messages"`
	OpenFlags   int64 `json:"openFlags"`
	OnlineUsers int   `json:"onlineUsers"`
}
