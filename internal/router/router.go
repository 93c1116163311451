package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ms0ur/timeflow/internal/handler"
	"github.com/ms0ur/timeflow/internal/middleware"
	"github.com/ms0ur/timeflow/internal/service"
)

type Options struct {
	AuthService     *service.AuthService
	AuthHandler     *handler.AuthHandler
	ActivityHandler *handler.ActivityHandler
	SessionHandler  *handler.SessionHandler
	SettingsHandler *handler.SettingsHandler
	CORSOrigins     []string
	MetricsEnabled  bool
}

func New(opts Options) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(opts.CORSOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.MetricsEnabled {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", opts.AuthHandler.Register)
	auth.POST("/login", opts.AuthHandler.Login)
	auth.GET("/me", middleware.Auth(opts.AuthService), opts.AuthHandler.Me)

	authed := api.Group("")
	authed.Use(middleware.Auth(opts.AuthService))

	activities := authed.Group("/activities")
	activities.GET("", opts.ActivityHandler.List)
	activities.POST("", opts.ActivityHandler.Create)
	activities.PATCH("/:id", opts.ActivityHandler.Update)
	activities.DELETE("/:id", opts.ActivityHandler.Delete)

	sessions := authed.Group("/sessions")
	sessions.POST("/switch", opts.SessionHandler.Switch)
	sessions.POST("/stop", opts.SessionHandler.Stop)
	sessions.POST("/sync", opts.SessionHandler.Sync)
	sessions.GET("/current", opts.SessionHandler.Current)
	sessions.GET("/stats", opts.SessionHandler.Stats)

	settings := authed.Group("/settings")
	settings.GET("", opts.SettingsHandler.Get)
	settings.PUT("", opts.SettingsHandler.Update)

	return engine
}
