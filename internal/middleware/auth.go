package middleware

import (
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/constants"
	apierrors "github.com/yukikurage/project-collab-api/internal/errors"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/services"
)

// RequireAuth authenticates the request with the session cookie or, failing
// that, a bearer token. The token may also arrive as the "token" query
// parameter because browsers cannot set headers on websocket upgrades.
// The loaded user is stored in the context.
func RequireAuth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticate(c, auth)
		if err != nil {
			if apierrors.KindOf(err) == apierrors.KindTransient {
				apierrors.Respond(c, err)
			} else {
				apierrors.Unauthorized(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

var errNoCredentials = apierrors.New(apierrors.KindUnauthorized, "no credentials")

func authenticate(c *gin.Context, auth *services.AuthService) (*models.User, error) {
	session := sessions.Default(c)
	if raw, ok := session.Get(constants.ContextKeyUserID).(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			user, err := auth.GetUser(c.Request.Context(), id)
			if err == nil {
				return user, nil
			}
			if !errors.Is(err, services.ErrUserNotFound) {
				return nil, err
			}
		}
	}

	token := bearerToken(c)
	if token == "" {
		return nil, errNoCredentials
	}
	return auth.Authenticate(c.Request.Context(), token)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}

// GetUser retrieves the authenticated user from context
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
