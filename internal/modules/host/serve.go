package host

import (
	"github.com/gin-gonic/gin"
	"github.com/siteforge/core/internal/models"
	"github.com/siteforge/core/internal/modules/render"
	"github.com/siteforge/core/internal/pkg/response"
	"go.uber.org/zap"
)

// PageResolver maps a request path to a servable page of a site.
type PageResolver interface {
	ResolveForPath(siteID, path string) (*models.PageModel, error)
}

// VisitRecorder appends one analytics event per served request.
type VisitRecorder interface {
	Record(siteID, path, referrer, userAgent string)
}

// Serve is the tenant-serving middleware. It resolves the Host header
// to a site; requests that address no tenant pass through to the
// platform routes untouched. For tenant hits it resolves the page,
// writes the rendered payload, and records the visit off the response
// path.
func Serve(resolver *Resolver, pages PageResolver, recorder VisitRecorder, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		site := resolver.Resolve(c.Request.Context(), c.Request.Host)
		if site == nil {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		page, err := pages.ResolveForPath(site.ID, path)
		if err != nil {
			// Store trouble must not surface as a 5xx to a visitor.
			logger.Error("page lookup failed",
				zap.String("site", site.ID),
				zap.String("path", path),
				zap.Error(err))
			response.NotFound(c)
			c.Abort()
			return
		}
		if page == nil {
			response.NotFound(c)
			c.Abort()
			return
		}

		response.OK(c, render.Page(site, page))
		c.Abort()

		// Fire and forget: the visitor never waits on analytics.
		referrer := c.Request.Referer()
		userAgent := c.Request.UserAgent()
		go recorder.Record(site.ID, path, referrer, userAgent)
	}
}
