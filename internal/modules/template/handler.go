package template

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/siteforge/core/internal/pkg/pagination"
	"github.com/siteforge/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	templates := rg.Group("/templates")
	{
		templates.GET("", h.list)
		templates.GET("/:id", h.get)

		templates.POST("", authMW, h.create)
		templates.PATCH("/:id", authMW, h.update)
		templates.POST("/:id/approve", authMW, h.approve)
		templates.DELETE("/:id", authMW, h.delete)
	}
}

func (h *Handler) list(c *gin.Context) {
	templates, pag, err := h.svc.List(c.Query("category"), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, templates, pag)
}

func (h *Handler) get(c *gin.Context) {
	tpl, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if tpl == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, tpl)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateTemplateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	tpl, err := h.svc.Create(&dto)
	if err != nil {
		if errors.Is(err, ErrTemplateIncomplete) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, tpl)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateTemplateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	tpl, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, ErrTemplateIncomplete) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if tpl == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, tpl)
}

func (h *Handler) approve(c *gin.Context) {
	approved := true
	tpl, err := h.svc.Update(c.Param("id"), &UpdateTemplateDTO{Approved: &approved})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if tpl == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, tpl)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
