package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfee/internal/model"
	"portfee/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var secret = []byte("middleware-secret")

type fakeUsers map[uuid.UUID]*model.User

func (f fakeUsers) GetActiveUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := f[id]; ok && u.IsActive {
		return u, nil
	}
	return nil, errors.New("not found")
}

func newRouter(users fakeUsers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/me", Authenticate(users, secret), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})
	return r
}

func token(t *testing.T, id uuid.UUID) string {
	t.Helper()
	signed, _, err := service.IssueToken(secret, id, "Ship", time.Hour, time.Now())
	require.NoError(t, err)
	return signed
}

func TestAuthenticate(t *testing.T) {
	active := &model.User{ID: uuid.New(), Username: "9074729", IsActive: true}
	inactive := &model.User{ID: uuid.New(), Username: "gone"}
	router := newRouter(fakeUsers{active.ID: active, inactive.ID: inactive})

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
		body   string
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token(t, active.ID)) }, http.StatusOK, "9074729"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: cookieName, Value: token(t, active.ID)}) }, http.StatusOK, "9074729"},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized, ""},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", token(t, active.ID)) }, http.StatusUnauthorized, ""},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, http.StatusUnauthorized, ""},
		{"inactive user", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token(t, inactive.ID)) }, http.StatusUnauthorized, ""},
		{"unknown user", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token(t, uuid.New())) }, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestCurrentUserWithoutAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, CurrentUser(c))
}
