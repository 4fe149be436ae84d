package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	UserHandler         *UserHandler
	ServiceHandler      *ServiceHandler
	TalkHandler         *TalkHandler
	NotificationHandler *NotificationHandler
	PaymentHandler      *PaymentHandler
	ReviewHandler       *ReviewHandler
	CommunityHandler    *CommunityHandler
	UploadHandler       *UploadHandler
	AdminHandler        *AdminHandler
	HealthHandler       *HealthHandler
}
