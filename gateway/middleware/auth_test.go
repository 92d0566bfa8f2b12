package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RigelNana/edumarket/pkg/logging"
	"github.com/RigelNana/edumarket/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type fakeAuth map[string]session.Session

func (f fakeAuth) Authenticate(_ context.Context, token string) (session.Session, error) {
	if s, ok := f[token]; ok {
		return s, nil
	}
	return nil, errors.New("unknown token")
}

func newEngine(guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := fakeAuth{
		"user-token":  session.User{ID: uuid.New(), Email: "sarah@example.com", Name: "Sarah"},
		"admin-token": session.Admin{ID: uuid.New(), Email: "admin@edumarket.dev"},
	}
	r := gin.New()
	r.Use(SessionAuth(auth, logging.New("error", io.Discard)))
	handlers := []gin.HandlerFunc{}
	if guard != nil {
		handlers = append(handlers, guard)
	}
	handlers = append(handlers, func(c *gin.Context) {
		kind := "anonymous"
		if s := CurrentSession(c); s != nil {
			kind = string(s.Kind())
		}
		c.String(http.StatusOK, kind)
	})
	r.GET("/", handlers...)
	return r
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionAuth(t *testing.T) {
	r := newEngine(nil)

	assert.Equal(t, "anonymous", get(r, "").Body.String())
	assert.Equal(t, "user", get(r, "user-token").Body.String())
	assert.Equal(t, "admin", get(r, "admin-token").Body.String())
	// a stale token does not fail public routes
	w := get(r, "expired")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestGuards(t *testing.T) {
	tests := []struct {
		name  string
		guard gin.HandlerFunc
		token string
		want  int
	}{
		{"session anonymous", RequireSession(), "", http.StatusUnauthorized},
		{"session user", RequireSession(), "user-token", http.StatusOK},
		{"session admin", RequireSession(), "admin-token", http.StatusOK},
		{"user anonymous", RequireUser(), "", http.StatusUnauthorized},
		{"user with user", RequireUser(), "user-token", http.StatusOK},
		{"user with admin", RequireUser(), "admin-token", http.StatusForbidden},
		{"admin with user", RequireAdmin(), "user-token", http.StatusForbidden},
		{"admin with admin", RequireAdmin(), "admin-token", http.StatusOK},
		{"admin bad token", RequireAdmin(), "nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(newEngine(tt.guard), tt.token)
			assert.Equal(t, tt.want, w.Code)
			if tt.want != http.StatusOK {
				assert.Contains(t, w.Body.String(), `"redirect":"/login"`)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for header, want := range map[string]string{
		"":               "",
		"Bearer abc":     "abc",
		"Bearer  abc ":   "abc",
		"Basic dXNlcjpw": "",
		"bearer abc":     "",
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			c.Request.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, BearerToken(c), header)
	}
}

func TestLevelForStatus(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, levelForStatus(http.StatusOK))
	assert.Equal(t, logrus.InfoLevel, levelForStatus(http.StatusFound))
	assert.Equal(t, logrus.WarnLevel, levelForStatus(http.StatusUnauthorized))
	assert.Equal(t, logrus.ErrorLevel, levelForStatus(http.StatusInternalServerError))
}
