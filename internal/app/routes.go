package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/siteforge/core/internal/middleware"
	"github.com/siteforge/core/internal/modules/analytics"
	"github.com/siteforge/core/internal/modules/gateway"
	"github.com/siteforge/core/internal/modules/host"
	"github.com/siteforge/core/internal/modules/page"
	"github.com/siteforge/core/internal/modules/site"
	"github.com/siteforge/core/internal/modules/template"
	pkgredis "github.com/siteforge/core/internal/pkg/redis"
	"github.com/siteforge/core/internal/pkg/response"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	authMW := middleware.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Services
	siteSvc := site.NewService(db)
	pageSvc := page.NewService(db)
	templateSvc := template.NewService(db)
	provisioner := template.NewProvisioner(db, a.logger, time.Duration(a.cfg.ProvisionTimeout)*time.Millisecond)
	recorder := analytics.NewRecorder(db, a.logger)
	resolver := host.NewResolver(siteSvc, rc, a.logger)

	// Tenant serving runs ahead of everything else. Requests whose
	// Host addresses a tenant are answered here; the rest fall
	// through to the platform routes below.
	r.Use(host.Serve(resolver, pageSvc, recorder, a.logger))

	api := r.Group(apiPrefix)
	api.Use(middleware.RateLimit(rc.Raw()))

	api.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "pong"})
	})

	site.NewHandler(siteSvc, provisioner, a.hub).RegisterRoutes(api, authMW)
	page.NewHandler(pageSvc, siteSvc).RegisterRoutes(api, authMW)
	template.NewHandler(templateSvc).RegisterRoutes(api, authMW)
	analytics.NewHandler(db, siteSvc).RegisterRoutes(api, authMW)

	// WebSocket gateway
	gateway.RegisterRoutes(r.Group(""), a.hub)
}
