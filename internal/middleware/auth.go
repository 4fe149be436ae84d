package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"simbi_backend/internal/auth"
	"simbi_backend/internal/logger"
	"simbi_backend/internal/models"
	"simbi_backend/internal/repositories"
	"simbi_backend/pkg/apperrors"
	"simbi_backend/pkg/contextkeys"
)

// AuthMiddleware requires a valid "Authorization: Bearer <jwt>" header.
func AuthMiddleware() gin.HandlerFunc {
	return authenticate(false)
}

// WSAuthMiddleware also accepts ?token= since browsers cannot set headers on WebSocket upgrades.
func WSAuthMiddleware() gin.HandlerFunc {
	return authenticate(true)
}

// OptionalAuthMiddleware sets the user when a valid token is present and never rejects.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr := bearerToken(c); tokenStr != "" {
			if claims, err := auth.ParseToken(tokenStr); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func authenticate(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" && allowQuery {
			tokenStr = c.Query("token")
		}
		if tokenStr == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			if apperrors.Is(err, auth.ErrExpiredToken) {
				apperrors.HandleError(c, apperrors.New(apperrors.CodeTokenExpired, "auth", "Token has expired", http.StatusUnauthorized))
			} else {
				apperrors.HandleError(c, apperrors.ErrInvalidToken)
			}
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(contextkeys.UserIDKey, claims.UserID)
	c.Set(contextkeys.RoleKey, claims.Role)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// RequireRoles allows the request only for the listed roles. Must run after AuthMiddleware.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role := GetUserRole(c)
		if role == "" {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: no role"))
			c.Abort()
			return
		}

		if !roleSet[role] {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			c.Abort()
			return
		}

		c.Next()
	}
}

// AccountLookup loads the stored user behind a token.
type AccountLookup interface {
	FindByID(db *gorm.DB, id string) (*models.User, error)
}

// RefreshAccount reloads the caller so bans and role changes apply before the
// token expires. The stored role replaces the one in the token.
// Must run after DBMiddleware and AuthMiddleware.
func RefreshAccount(users AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		val, _ := c.Get(string(contextkeys.DBContextKey))
		db, ok := val.(*gorm.DB)
		if !ok {
			apperrors.HandleError(c, apperrors.InternalError(errors.New("db missing from request context")))
			c.Abort()
			return
		}

		user, err := users.FindByID(db, GetUserID(c))
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			c.Abort()
			return
		case err != nil:
			logger.CtxWithError(c.Request.Context(), "Failed to reload account", err)
			apperrors.HandleError(c, apperrors.InternalError(err))
			c.Abort()
			return
		}

		switch user.Status {
		case models.UserStatusActive:
		case models.UserStatusBanned:
			// an expired temporary ban is lifted on the next login
			if user.IsBanned(time.Now()) {
				apperrors.HandleError(c, apperrors.ErrAccountBanned)
				c.Abort()
				return
			}
		default:
			apperrors.HandleError(c, apperrors.ErrAccountInactive)
			c.Abort()
			return
		}

		c.Set(contextkeys.RoleKey, user.Role)
		c.Next()
	}
}

func GetUserID(c *gin.Context) string {
	userID, exists := c.Get(contextkeys.UserIDKey)
	if !exists {
		return ""
	}

	id, ok := userID.(string)
	if !ok {
		return ""
	}

	return id
}

func GetUserRole(c *gin.Context) models.UserRole {
	roleVal, exists := c.Get(contextkeys.RoleKey)
	if !exists {
		return ""
	}
	switch role := roleVal.(type) {
	case models.UserRole:
		return role
	case string:
		return models.UserRole(role)
	}
	return ""
}
