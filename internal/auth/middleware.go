package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourname/fittrack/internal"
	"github.com/yourname/fittrack/internal/response"
)

const (
	UserKey  = "user"
	TokenKey = "token"
)

// BearerToken extracts the token from an Authorization header.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func AuthMiddleware(provider Provider, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := BearerToken(c.GetHeader("Authorization")); ok {
			user, err := provider.Authenticate(c.Request.Context(), token)
			if err == nil {
				c.Set(UserKey, user)
				c.Set(TokenKey, token)
				c.Next()
				return
			}
			logger.Debugf("[request_id=%s] authentication failed: %v", c.GetString("request_id"), err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.NewAppError(http.StatusUnauthorized, "Unauthorized"))
	}
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) *internal.User {
	return c.MustGet(UserKey).(*internal.User)
}
