package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"tourii_backend/internal/model"
	"tourii_backend/internal/service"
	"tourii_backend/pkg/auth"
	"tourii_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserGetter interface {
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
}

type Authorization struct {
	users UserGetter
}

func NewAuthorization(users UserGetter) *Authorization {
	return &Authorization{
		users: users,
	}
}

func (a *Authorization) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		telegramUser, ok := auth.UserFromContext(c)
		if !ok {
			log.Error("telegram user data not found in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, err := a.users.GetUserByID(c.Request.Context(), telegramUser.ID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			}
			log.Error("failed to get user data", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		if !user.IsAdmin {
			log.Info("unauthorized access attempt to admin endpoint",
				zap.Int64("user_id", telegramUser.ID))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}

		c.Set("is_admin", true)
		c.Next()
	}
}

// SelfOnly rejects requests whose path parameter names a different user than
// the authenticated one.
func SelfOnly(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		telegramUser, ok := auth.UserFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		id, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
			return
		}

		if id != telegramUser.ID {
			logger.Logger().Info("access to another user's data denied",
				zap.Int64("user_id", telegramUser.ID),
				zap.Int64("requested_id", id))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		c.Next()
	}
}
