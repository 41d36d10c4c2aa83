package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"portfee/internal/model"
	"portfee/internal/service"
	"portfee/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userKey    = "user"
	cookieName = "access_token"
)

// UserLoader resolves the subject of a token to an active user.
type UserLoader interface {
	GetActiveUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// SetTokenCookie stores the access token as an HttpOnly cookie. Cross-site
// deployments need secure set.
func SetTokenCookie(c *gin.Context, token string, expiresAt time.Time, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetCookie(cookieName, token, maxAge, "/", "", secure, true)
}

// ClearTokenCookie removes the access token cookie.
func ClearTokenCookie(c *gin.Context, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(cookieName, "", -1, "/", "", secure, true)
}

// TokenFromRequest reads the access token from the cookie, falling back to
// an "Authorization: Bearer" header.
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// ResolveToken validates the token and loads the user it was issued to.
func ResolveToken(ctx context.Context, users UserLoader, secret []byte, token string) (*model.User, error) {
	id, err := service.ParseToken(secret, token)
	if err != nil {
		return nil, err
	}
	return users.GetActiveUser(ctx, id)
}

// Authenticate rejects requests without a valid token for an active user and
// stores the user on the context.
func Authenticate(users UserLoader, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		user, err := ResolveToken(c.Request.Context(), users, secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate, or nil.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
