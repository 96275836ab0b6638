package site

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/siteforge/core/internal/middleware"
	"github.com/siteforge/core/internal/models"
	"github.com/siteforge/core/internal/modules/gateway"
	"github.com/siteforge/core/internal/modules/template"
	"github.com/siteforge/core/internal/pkg/pagination"
	"github.com/siteforge/core/internal/pkg/response"
)

// Notifier pushes events to connected dashboard clients.
type Notifier interface {
	NotifyUser(userID, event string, payload interface{})
}

// Provisioner installs a template's pages onto a site.
type Provisioner interface {
	Provision(ctx context.Context, siteID, templateID string) (*models.TemplateModel, error)
}

type Handler struct {
	svc         *Service
	provisioner Provisioner
	notifier    Notifier
}

func NewHandler(svc *Service, provisioner Provisioner, notifier Notifier) *Handler {
	return &Handler{svc: svc, provisioner: provisioner, notifier: notifier}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	sites := rg.Group("/sites", authMW)
	{
		sites.POST("", h.create)
		sites.GET("", h.list)
		sites.GET("/:id", h.get)
		sites.PATCH("/:id", h.update)
		sites.DELETE("/:id", h.delete)
		sites.PUT("/:id/template", h.provision)
		sites.POST("/:id/transfer", h.transfer)
	}
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateSiteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.CurrentUserID(c)
	site, err := h.svc.Create(userID, &dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSubdomain):
			response.BadRequest(c, err.Error())
		case errors.Is(err, ErrSubdomainTaken), errors.Is(err, ErrCustomDomainTaken):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}

	tpl, err := h.provisioner.Provision(c.Request.Context(), site.ID, dto.TemplateID)
	if err != nil {
		h.respondProvisionError(c, err, site.ID)
		return
	}
	site.TemplateKind = tpl.Category

	if h.notifier != nil {
		h.notifier.NotifyUser(userID, gateway.EventSiteProvisioned, gin.H{
			"siteId":    site.ID,
			"subdomain": site.Subdomain,
		})
	}
	response.Created(c, site)
}

func (h *Handler) list(c *gin.Context) {
	sites, pag, err := h.svc.ListByOwner(middleware.CurrentUserID(c), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, sites, pag)
}

func (h *Handler) get(c *gin.Context) {
	site, ok := h.ownedSite(c)
	if !ok {
		return
	}
	response.OK(c, site)
}

func (h *Handler) update(c *gin.Context) {
	site, ok := h.ownedSite(c)
	if !ok {
		return
	}

	var dto UpdateSiteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	updated, err := h.svc.Update(site.ID, &dto)
	if err != nil {
		if errors.Is(err, ErrCustomDomainTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, updated)
}

func (h *Handler) delete(c *gin.Context) {
	site, ok := h.ownedSite(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(site.ID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// provision re-runs template installation on an existing site, replacing
// its current pages.
func (h *Handler) provision(c *gin.Context) {
	site, ok := h.ownedSite(c)
	if !ok {
		return
	}

	var dto struct {
		TemplateID string `json:"templateId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tpl, err := h.provisioner.Provision(c.Request.Context(), site.ID, dto.TemplateID)
	if err != nil {
		h.respondProvisionError(c, err, site.ID)
		return
	}
	site.TemplateKind = tpl.Category

	if h.notifier != nil {
		h.notifier.NotifyUser(middleware.CurrentUserID(c), gateway.EventSiteProvisioned, gin.H{
			"siteId":    site.ID,
			"subdomain": site.Subdomain,
		})
	}
	response.OK(c, site)
}

// transfer hands the site to another user. The new owner gets a push
// on their dashboard connection if they have one.
func (h *Handler) transfer(c *gin.Context) {
	site, ok := h.ownedSite(c)
	if !ok {
		return
	}

	var dto struct {
		OwnerUserID string `json:"ownerUserId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.svc.TransferOwnership(site.ID, dto.OwnerUserID); err != nil {
		response.InternalError(c, err)
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyUser(dto.OwnerUserID, gateway.EventOwnershipChanged, gin.H{
			"siteId":    site.ID,
			"subdomain": site.Subdomain,
		})
	}
	response.NoContent(c)
}

// respondProvisionError reports a provisioning failure. The site row
// survives the failure, so the body carries its id: the owner retries
// with PUT /sites/:id/template instead of re-creating the site.
func (h *Handler) respondProvisionError(c *gin.Context, err error, siteID string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, template.ErrTemplateNotFound):
		status = http.StatusNotFound
	case errors.Is(err, template.ErrTemplateIncomplete):
		status = http.StatusUnprocessableEntity
	}
	c.AbortWithStatusJSON(status, gin.H{
		"ok":      0,
		"code":    status,
		"message": err.Error(),
		"siteId":  siteID,
	})
}

// ownedSite loads the :id site and enforces ownership. Writes the error
// response itself when the lookup fails.
func (h *Handler) ownedSite(c *gin.Context) (*models.SiteModel, bool) {
	site, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return nil, false
	}
	if site == nil {
		response.NotFound(c)
		return nil, false
	}
	if site.OwnerUserID != middleware.CurrentUserID(c) {
		response.Forbidden(c)
		return nil, false
	}
	return site, true
}
