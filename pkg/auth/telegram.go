package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tourii_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	initdata "github.com/telegram-mini-apps/init-data-golang"
	"go.uber.org/zap"
)

const (
	expTime = 24 * time.Hour

	// ContextKey is where the middleware stores *TelegramUserData.
	ContextKey = "telegram_user"

	headerPrefix = "Telegram "
)

var ErrMissingUser = errors.New("init data carries no user")

type TelegramAuth struct {
	botToken  string
	debugMode bool
}

// NewTelegramAuth builds the init data verifier. In debug mode the signature
// is not checked, which lets local clients send hand-made init data.
func NewTelegramAuth(botToken string, debugMode bool) *TelegramAuth {
	return &TelegramAuth{
		botToken:  botToken,
		debugMode: debugMode,
	}
}

func (t *TelegramAuth) TelegramAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		initData, ok := initDataFromRequest(c)
		if !ok {
			log.Info("missing or malformed authorization")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "telegram authorization is required"})
			return
		}

		if !t.debugMode {
			if err := initdata.Validate(initData, t.botToken, expTime); err != nil {
				log.Info("invalid telegram init data", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid telegram auth data"})
				return
			}
		}

		telegramUserData, err := ExtractTelegramData(initData)
		if err != nil {
			log.Info("failed to extract telegram data", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid telegram data"})
			return
		}

		c.Set(ContextKey, telegramUserData)
		c.Next()
	}
}

// initDataFromRequest reads init data from the Authorization header. Browsers
// cannot set headers on websocket upgrades, so the tg_init_data query
// parameter is accepted as well.
func initDataFromRequest(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		if !strings.HasPrefix(header, headerPrefix) {
			return "", false
		}
		return strings.TrimPrefix(header, headerPrefix), true
	}
	if q := c.Query("tg_init_data"); q != "" {
		return q, true
	}
	return "", false
}

// UserFromContext returns the user stored by TelegramAuthMiddleware.
func UserFromContext(c *gin.Context) (*TelegramUserData, bool) {
	v, exists := c.Get(ContextKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*TelegramUserData)
	return user, ok
}

type TelegramUserData struct {
	ID           int64
	Username     string
	LanguageCode string
	IsPremium    bool
	AuthDate     time.Time
}

func ExtractTelegramData(initData string) (*TelegramUserData, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, err
	}

	authDateUnix, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, err
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return nil, ErrMissingUser
	}

	var userData struct {
		ID           int64  `json:"id"`
		Username     string `json:"username"`
		LanguageCode string `json:"language_code"`
		IsPremium    bool   `json:"is_premium"`
	}

	if err := json.Unmarshal([]byte(rawUser), &userData); err != nil {
		return nil, err
	}
	if userData.ID == 0 {
		return nil, ErrMissingUser
	}

	return &TelegramUserData{
		ID:           userData.ID,
		Username:     userData.Username,
		LanguageCode: userData.LanguageCode,
		IsPremium:    userData.IsPremium,
		AuthDate:     time.Unix(authDateUnix, 0).UTC(),
	}, nil
}
