package constants

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"
	ContextKeyClass     = "class"
	ContextKeyTask      = "task"
)

// Cookies and headers
const (
	RefreshCookieName = "refresh_token"
	SessionKeyRefresh = "refresh"
	RequestIDHeader   = "X-Request-ID"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Validation limits
const (
	MinPasswordLength  = 8
	MaxPasswordLength  = 72
	ClassCodeLength    = 7
	MaxCodeAttempts    = 10
	InviteTokenBytes   = 32
	MaxTitleLength     = 255
	MaxClassNameLength = 255
)
