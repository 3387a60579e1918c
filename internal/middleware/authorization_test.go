package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tourii_backend/internal/model"
	"tourii_backend/internal/service"
	"tourii_backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUserGetter struct {
	mock.Mock
}

func (m *mockUserGetter) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func withUser(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != 0 {
			c.Set(auth.ContextKey, &auth.TelegramUserData{ID: id})
		}
		c.Next()
	}
}

func TestAdminOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)

	users := &mockUserGetter{}
	users.On("GetUserByID", mock.Anything, int64(1)).Return(&model.User{ID: 1, IsAdmin: true}, nil)
	users.On("GetUserByID", mock.Anything, int64(2)).Return(&model.User{ID: 2}, nil)
	users.On("GetUserByID", mock.Anything, int64(3)).Return(nil, service.ErrUserNotFound)
	users.On("GetUserByID", mock.Anything, int64(4)).Return(nil, errors.New("db down"))

	tests := []struct {
		name     string
		userID   int64
		expected int
	}{
		{name: "Admin", userID: 1, expected: http.StatusOK},
		{name: "Regular user", userID: 2, expected: http.StatusForbidden},
		{name: "Unknown user", userID: 3, expected: http.StatusUnauthorized},
		{name: "Lookup failure", userID: 4, expected: http.StatusInternalServerError},
		{name: "Not authenticated", userID: 0, expected: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin", withUser(tt.userID), NewAuthorization(users).AdminOnly(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestSelfOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		path     string
		expected int
	}{
		{name: "Own data", path: "/users/42", expected: http.StatusOK},
		{name: "Someone else", path: "/users/43", expected: http.StatusForbidden},
		{name: "Malformed id", path: "/users/abc", expected: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/users/:user_id", withUser(42), SelfOnly("user_id"), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expected, w.Code)
		})
	}
}
