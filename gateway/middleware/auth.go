package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/RigelNana/edumarket/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	sessionContextKey = "session"
	tokenContextKey   = "token"
)

// Authenticator resolves a bearer token to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (session.Session, error)
}

// SessionAuth 中间件：提取 Bearer token -> 查询会话 -> 注入 session
// Requests without a valid token continue anonymously; route guards decide.
func SessionAuth(a Authenticator, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		sess, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.WithError(err).WithField("path", c.Request.URL.Path).Debug("ignoring bearer token")
			c.Next()
			return
		}
		c.Set(sessionContextKey, sess)
		c.Set(tokenContextKey, token)
		c.Next()
	}
}

// BearerToken returns the token from the Authorization header, or "".
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// CurrentSession returns nil for anonymous requests.
func CurrentSession(c *gin.Context) session.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(session.Session)
	return sess
}

// RequireSession lets any signed-in session through.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c) == nil {
			unauthorized(c)
			return
		}
		c.Next()
	}
}

// RequireUser admits user sessions only; admins are sent to the login page.
func RequireUser() gin.HandlerFunc {
	return requireKind(session.KindUser)
}

func RequireAdmin() gin.HandlerFunc {
	return requireKind(session.KindAdmin)
}

func requireKind(kind session.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil {
			unauthorized(c)
			return
		}
		if sess.Kind() != kind {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "this page needs a " + string(kind) + " session",
				"redirect": "/login",
			})
			return
		}
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":    "Please log in to continue.",
		"redirect": "/login",
	})
}
