package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrAccountNotFound      = errors.New("account not found")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrServiceNotFound      = errors.New("service not found")
	ErrFlagNotFound         = errors.New("flag not found")
	ErrTalkNotFound         = errors.New("talk not found")
	ErrOfferNotFound        = errors.New("offer not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrTransactionNotFound  = errors.New("payment transaction not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrReviewNotFound       = errors.New("review not found")
	ErrReviewAlreadyExists  = errors.New("review already exists")
	ErrCommunityNotFound    = errors.New("community not found")
	ErrUploadNotFound       = errors.New("upload not found")
)

// notFound maps gorm.ErrRecordNotFound to the repository sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// isUniqueViolation detects duplicate key errors across postgres, mysql and sqlite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry")
}

// paginate applies page/pageSize (1-based) to a query.
func paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize < 1 {
			pageSize = 20
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
