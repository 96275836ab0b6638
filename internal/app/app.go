package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/siteforge/core/internal/config"
	"github.com/siteforge/core/internal/database"
	"github.com/siteforge/core/internal/middleware"
	"github.com/siteforge/core/internal/modules/gateway"
	jwtpkg "github.com/siteforge/core/internal/pkg/jwt"
	pkgredis "github.com/siteforge/core/internal/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	hub    *gateway.Hub
	logger *zap.Logger
	cancel context.CancelFunc
}

// New initializes the application: config → DB → Redis → hub → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			return originAllowed(patterns, origin)
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	hub := gateway.NewHub(rc, logger, func(token string) (string, error) {
		claims, err := jwtpkg.Parse(token)
		if err != nil {
			return "", err
		}
		return claims.UserID, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	app := &App{cfg: cfg, router: router, db: db, hub: hub, logger: logger, cancel: cancel}
	app.registerRoutes(rc)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown cleans up background goroutines.
func (a *App) Shutdown() { a.cancel() }
