package main

import (
	"log"

	"github.com/ms0ur/timeflow/internal/config"
	"github.com/ms0ur/timeflow/internal/db"
	"github.com/ms0ur/timeflow/internal/handler"
	"github.com/ms0ur/timeflow/internal/repository"
	"github.com/ms0ur/timeflow/internal/router"
	"github.com/ms0ur/timeflow/internal/service"
)

func main() {
	cfg := config.Load()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	activityRepo := repository.NewActivityRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	syncEventRepo := repository.NewSyncEventRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)

	authService := service.NewAuthService(userRepo, activityRepo, cfg.JWTSecret, cfg.TokenTTL)
	activityService := service.NewActivityService(activityRepo)
	sessionService := service.NewSessionService(sessionRepo, activityRepo, syncEventRepo)
	statsService := service.NewStatsService(sessionRepo, activityRepo)
	settingsService := service.NewSettingsService(settingsRepo)

	engine := router.New(router.Options{
		AuthService:     authService,
		AuthHandler:     handler.NewAuthHandler(authService),
		ActivityHandler: handler.NewActivityHandler(activityService),
		SessionHandler:  handler.NewSessionHandler(sessionService, statsService),
		SettingsHandler: handler.NewSettingsHandler(settingsService),
		CORSOrigins:     cfg.CORSOrigins,
		MetricsEnabled:  cfg.MetricsEnabled,
	})

	log.Printf("timeflow server listening on :%s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
