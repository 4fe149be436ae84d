package models

type UserRole string
type UserStatus string
type ProfileVisibility string
type ServiceKind string
type TradingType string
type ServiceState string
type TalkStatus string
type OfferStatus string
type NotificationType string
type ReviewStatus string
type PaymentStatus string

const (
	UserRoleUser      UserRole = "user"
	UserRoleModerator UserRole = "moderator"
	UserRoleAdmin     UserRole = "admin"

	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBanned   UserStatus = "banned"

	VisibilityPublic  ProfileVisibility = "public"
	VisibilityPrivate ProfileVisibility = "private"

	ServiceKindOffer   ServiceKind = "offer"
	ServiceKindRequest ServiceKind = "request"

	TradingTypeSimbi TradingType = "simbi"
	TradingTypeUSD   TradingType = "usd"
	TradingTypeBoth  TradingType = "both"

	ServiceStateDraft   ServiceState = "draft"
	ServiceStateActive  ServiceState = "active"
	ServiceStateHidden  ServiceState = "hidden"
	ServiceStateDeleted ServiceState = "deleted"

	TalkStatusActive TalkStatus = "active"
	TalkStatusClosed TalkStatus = "closed"

	OfferStatusPending   OfferStatus = "pending"
	OfferStatusAccepted  OfferStatus = "accepted"
	OfferStatusDeclined  OfferStatus = "declined"
	OfferStatusCancelled OfferStatus = "cancelled"

	NotificationNewMessage       NotificationType = "new_message"
	NotificationOfferReceived    NotificationType = "offer_received"
	NotificationOfferAccepted    NotificationType = "offer_accepted"
	NotificationReviewReceived   NotificationType = "review_received"
	NotificationNewFollower      NotificationType = "new_follower"
	NotificationPaymentSucceeded NotificationType = "payment_succeeded"
	NotificationSystem           NotificationType = "system"

	ReviewStatusPublished ReviewStatus = "published"
	ReviewStatusHidden    ReviewStatus = "hidden"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCanceled  PaymentStatus = "canceled"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleUser, UserRoleModerator, UserRoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role may moderate content.
func (r UserRole) IsStaff() bool {
	return r == UserRoleAdmin || r == UserRoleModerator
}

func (k ServiceKind) IsValid() bool {
	return k == ServiceKindOffer || k == ServiceKindRequest
}

func (t TradingType) IsValid() bool {
	switch t {
	case TradingTypeSimbi, TradingTypeUSD, TradingTypeBoth:
		return true
	}
	return false
}

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationNewMessage, NotificationOfferReceived, NotificationOfferAccepted,
		NotificationReviewReceived, NotificationNewFollower, NotificationPaymentSucceeded,
		NotificationSystem:
		return true
	}
	return false
}
