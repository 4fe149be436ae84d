package validator

import (
	"regexp"

	"simbi_backend/internal/logger"
	"simbi_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	currencyRegex = regexp.MustCompile(`^[a-zA-Z]{3}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
)

// registerCustomRules adds the project specific tags to v.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			logger.Fatal("failed to register custom validation tag", "tag", tag, "error", err)
		}
	}

	mustRegister("is-user-role", validateUserRole)
	mustRegister("is-service-kind", validateServiceKind)
	mustRegister("is-trading-type", validateTradingType)
	mustRegister("is-notification-type", validateNotificationType)
	mustRegister("currency", validateCurrency)
	mustRegister("username", validateUsername)
}

// Empty values pass; "required" handles presence.

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.UserRole(value).IsValid()
}

func validateServiceKind(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.ServiceKind(value).IsValid()
}

func validateTradingType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.TradingType(value).IsValid()
}

func validateNotificationType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.NotificationType(value).IsValid()
}

// validateCurrency accepts ISO 4217 style three letter codes.
func validateCurrency(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || currencyRegex.MatchString(value)
}

func validateUsername(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || usernameRegex.MatchString(value)
}
