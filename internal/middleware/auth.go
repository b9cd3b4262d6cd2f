package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/group-study-api/internal/auth"
	"github.com/yukikurage/group-study-api/internal/constants"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
)

// RequireAuth checks the bearer access token and stores its user in the context
func RequireAuth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		claims, err := tokens.Parse(raw, auth.TokenTypeAccess)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				apierrors.Respond(c, apierrors.Unauthenticated(apierrors.ErrCodeTokenExpired, "Access token has expired"))
			} else {
				apierrors.Unauthorized(c, "Invalid access token")
			}
			c.Abort()
			return
		}

		setUser(c, claims)
		c.Next()
	}
}

// OptionalAuth stores the user of a valid bearer token and lets anonymous requests through
func OptionalAuth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			if claims, err := tokens.Parse(raw, auth.TokenTypeAccess); err == nil {
				setUser(c, claims)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func setUser(c *gin.Context, claims *auth.Claims) {
	c.Set(constants.ContextKeyUserID, claims.UserID)
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(constants.ContextKeyUserID)
	return userID, userID != ""
}

// ActorID is the current user ID, empty for anonymous requests
func ActorID(c *gin.Context) string {
	userID, _ := GetUserID(c)
	return userID
}
