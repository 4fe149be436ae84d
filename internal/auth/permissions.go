package auth

import (
	"errors"

	"simbi_backend/internal/models"
)

// Permission names checked by services and middleware.
const (
	PermServicesModerate = "services:moderate"
	PermServicesDelete   = "services:delete:any"
	PermReviewsModerate  = "reviews:moderate"
	PermFlagsResolve     = "flags:resolve"
	PermUsersRead        = "users:read:any"
	PermUsersManage      = "users:manage"
	PermSystemStats      = "system:stats"
)

var Permissions = map[models.UserRole][]string{
	models.UserRoleAdmin: {
		PermServicesModerate,
		PermServicesDelete,
		PermReviewsModerate,
		PermFlagsResolve,
		PermUsersRead,
		PermUsersManage,
		PermSystemStats,
	},
	models.UserRoleModerator: {
		PermServicesModerate,
		PermServicesDelete,
		PermReviewsModerate,
		PermFlagsResolve,
		PermUsersRead,
	},
	models.UserRoleUser: {},
}

func HasPermission(role models.UserRole, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

func CanPerformAction(claims *Claims, permission string) bool {
	return HasPermission(models.UserRole(claims.Role), permission)
}

func IsAdmin(claims *Claims) bool {
	return claims.Role == string(models.UserRoleAdmin)
}

func IsModeratorOrHigher(claims *Claims) bool {
	return models.UserRole(claims.Role).IsStaff()
}

func ValidateRole(role string) error {
	if !models.UserRole(role).IsValid() {
		return errors.New("invalid role")
	}
	return nil
}
