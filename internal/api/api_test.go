package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"tourii_backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

const testUserID = 42

func init() {
	gin.SetMode(gin.TestMode)
}

func initData(userID int64) string {
	user := fmt.Sprintf(`{"id":%d,"username":"hana","language_code":"ja"}`, userID)
	return "user=" + url.QueryEscape(user) + "&auth_date=1700000000"
}

func newTestRouter(register func(g *gin.RouterGroup, a *auth.TelegramAuth)) *gin.Engine {
	router := gin.New()
	register(router.Group("/api/v1"), auth.NewTelegramAuth("", true))
	return router
}

func doRequest(t *testing.T, router http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Telegram "+initData(testUserID))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func httptestRequestWithoutAuth(router http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}
