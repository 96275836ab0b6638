package page

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/siteforge/core/internal/middleware"
	"github.com/siteforge/core/internal/models"
	"github.com/siteforge/core/internal/pkg/response"
	"gorm.io/gorm"
)

// SiteDirectory is the slice of the site module the page handler needs
// for ownership checks.
type SiteDirectory interface {
	GetByID(id string) (*models.SiteModel, error)
}

type Handler struct {
	svc   *Service
	sites SiteDirectory
}

func NewHandler(svc *Service, sites SiteDirectory) *Handler {
	return &Handler{svc: svc, sites: sites}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	pages := rg.Group("/sites/:id/pages", authMW)
	{
		pages.POST("", h.create)
		pages.GET("", h.list)
		pages.GET("/:pageId", h.get)
		pages.PATCH("/:pageId", h.update)
		pages.DELETE("/:pageId", h.delete)
		pages.POST("/:pageId/home", h.setHome)
	}
}

func (h *Handler) create(c *gin.Context) {
	siteID, ok := h.authorizeSite(c)
	if !ok {
		return
	}

	var dto CreatePageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	page, err := h.svc.Create(siteID, &dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSlug), errors.Is(err, ErrContentConflict):
			response.BadRequest(c, err.Error())
		case errors.Is(err, ErrSlugTaken):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, page)
}

func (h *Handler) list(c *gin.Context) {
	siteID, ok := h.authorizeSite(c)
	if !ok {
		return
	}
	pages, err := h.svc.ListBySite(siteID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, pages)
}

func (h *Handler) get(c *gin.Context) {
	siteID, ok := h.authorizeSite(c)
	if !ok {
		return
	}
	page, err := h.svc.GetByID(siteID, c.Param("pageId"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if page == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, page)
}

func (h *Handler) update(c *gin.Context) {
	siteID, ok := h.authorizeSite(c)
	if !ok {
		return
	}

	var dto UpdatePageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	page, err := h.svc.Update(siteID, c.Param("pageId"), &dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSlug), errors.Is(err, ErrContentConflict):
			response.BadRequest(c, err.Error())
		case errors.Is(err, ErrSlugTaken):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	if page == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, page)
}

func (h *Handler) delete(c *gin.Context) {
	siteID, ok := h.authorizeSite(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(siteID, c.Param("pageId")); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFound(c)
		case errors.Is(err, ErrHomeHasSiblings):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.NoContent(c)
}

func (h *Handler) setHome(c *gin.Context) {
	siteID, ok := h.authorizeSite(c)
	if !ok {
		return
	}
	if err := h.svc.SetHome(siteID, c.Param("pageId")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) authorizeSite(c *gin.Context) (string, bool) {
	site, err := h.sites.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return "", false
	}
	if site == nil {
		response.NotFound(c)
		return "", false
	}
	if site.OwnerUserID != middleware.CurrentUserID(c) {
		response.Forbidden(c)
		return "", false
	}
	return site.ID, true
}
