package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"daily-diet/internal/domain"
	"daily-diet/internal/service"
)

const userContextKey = "currentUser"

// sessionCookieName matches the cookie issued at registration.
const sessionCookieName = "session_id"

// requireSession resolves the opaque session token before any meal or
// metrics handler runs. The token comes from the Authorization bearer
// header or, failing that, the session cookie.
func requireSession(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie(sessionCookieName); err == nil {
				token = cookie
			}
		}

		user, err := users.ResolveSession(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
