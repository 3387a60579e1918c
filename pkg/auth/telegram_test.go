package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestExtractTelegramData(t *testing.T) {
	tests := []struct {
		name     string
		initData string
		expected *TelegramUserData
		wantErr  bool
	}{
		{
			name:     "Full user",
			initData: "user=" + url.QueryEscape(`{"id":42,"username":"hana","language_code":"ja","is_premium":true}`) + "&auth_date=1700000000",
			expected: &TelegramUserData{
				ID:           42,
				Username:     "hana",
				LanguageCode: "ja",
				IsPremium:    true,
				AuthDate:     time.Unix(1700000000, 0).UTC(),
			},
		},
		{
			name:     "Missing auth date",
			initData: "user=" + url.QueryEscape(`{"id":42}`),
			wantErr:  true,
		},
		{
			name:     "Missing user",
			initData: "auth_date=1700000000",
			wantErr:  true,
		},
		{
			name:     "User without id",
			initData: "user=" + url.QueryEscape(`{"username":"ghost"}`) + "&auth_date=1700000000",
			wantErr:  true,
		},
		{
			name:     "Broken json",
			initData: "user=%7Bnope&auth_date=1700000000",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ExtractTelegramData(tt.initData)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, data)
		})
	}
}

func TestTelegramAuthMiddleware(t *testing.T) {
	initData := "user=" + url.QueryEscape(`{"id":42,"username":"hana"}`) + "&auth_date=1700000000"

	newRouter := func(a *TelegramAuth) *gin.Engine {
		r := gin.New()
		r.GET("/me", a.TelegramAuthMiddleware(), func(c *gin.Context) {
			user, ok := UserFromContext(c)
			if !ok {
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, gin.H{"id": user.ID})
		})
		return r
	}

	tests := []struct {
		name     string
		auth     *TelegramAuth
		target   string
		header   string
		expected int
	}{
		{name: "Debug mode header", auth: NewTelegramAuth("", true), target: "/me", header: "Telegram " + initData, expected: http.StatusOK},
		{name: "Debug mode query", auth: NewTelegramAuth("", true), target: "/me?tg_init_data=" + url.QueryEscape(initData), expected: http.StatusOK},
		{name: "Missing header", auth: NewTelegramAuth("", true), target: "/me", expected: http.StatusUnauthorized},
		{name: "Wrong scheme", auth: NewTelegramAuth("", true), target: "/me", header: "Bearer abc", expected: http.StatusUnauthorized},
		{name: "Unsigned data rejected", auth: NewTelegramAuth("123:token", false), target: "/me", header: "Telegram " + initData, expected: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			newRouter(tt.auth).ServeHTTP(w, req)

			assert.Equal(t, tt.expected, w.Code)
		})
	}
}
