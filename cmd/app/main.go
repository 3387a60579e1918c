package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tourii_backend/internal/api"
	"tourii_backend/internal/middleware"
	"tourii_backend/internal/repository"
	"tourii_backend/internal/service"
	"tourii_backend/pkg/auth"
	"tourii_backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	if cfg.MigrateOnStart {
		if err := repo.Migrate(context.Background()); err != nil {
			zapLogger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	hub := api.NewHub()
	defer hub.Close()

	notifiers := service.MultiNotifier{hub}
	if cfg.Notifier.TelegramEnabled && cfg.TelegramAuth.TelegramBotToken != "" {
		tg, err := service.NewTelegramNotifier(service.TelegramConfig{
			BotToken: cfg.TelegramAuth.TelegramBotToken,
			Debug:    cfg.Notifier.TelegramDebug,
		})
		if err != nil {
			zapLogger.Fatal("Failed to initialize telegram notifier", zap.Error(err))
		}
		notifiers = append(notifiers, tg)
	}

	svc := &service.Service{
		UserService:        service.NewUserService(repo),
		QuestService:       service.NewQuestService(repo, notifiers),
		StoryService:       service.NewStoryService(repo),
		PerkService:        service.NewPerkService(repo, notifiers),
		AchievementService: service.NewAchievementService(repo),
	}

	telegramAuth := auth.NewTelegramAuth(cfg.TelegramAuth.TelegramBotToken, cfg.TelegramAuth.DebugMode)
	if cfg.TelegramAuth.DebugMode {
		zapLogger.Warn("Telegram init data signatures are not verified")
	}
	authz := middleware.NewAuthorization(svc.UserService)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewUserRoutes(a, svc.UserService, svc.AchievementService, telegramAuth)
	api.NewQuestRoutes(a, svc.QuestService, telegramAuth)
	api.NewStoryRoutes(a, svc.StoryService, telegramAuth)
	api.NewPerkRoutes(a, svc.PerkService, telegramAuth)
	api.NewNotificationRoutes(a, hub, telegramAuth)
	api.NewAdminRoutes(a, svc.QuestService, svc.StoryService, svc.PerkService, telegramAuth, authz)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		zapLogger.Info("Starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server shutdown failed", zap.Error(err))
	}
}
