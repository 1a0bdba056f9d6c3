package constants

const (
	// ContextKeyUserID is the session and gin context key holding the authenticated user ID
	ContextKeyUserID = "user_id"
	// ContextKeyUser holds the authenticated *models.User
	ContextKeyUser = "user"

	SessionCookieName = "project_session"

	MinPasswordLength = 8

	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 100

	MaxAIGeneratedTasks = 20

	// ClientSendBuffer is the per-connection outbound queue length of the realtime hub
	ClientSendBuffer = 256
)
