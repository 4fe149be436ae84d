package contextkeys

// Custom type so our keys never collide with other packages.
type contextKey string

// DBContextKey stores the request-scoped *gorm.DB in gin/context.
const DBContextKey = contextKey("db")

// Keys set by AuthMiddleware on the gin context.
const (
	UserIDKey = "userID"
	RoleKey   = "role"
)
