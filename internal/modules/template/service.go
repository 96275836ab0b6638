package template

import (
	"errors"

	"github.com/siteforge/core/internal/models"
	"github.com/siteforge/core/internal/pkg/pagination"
	"github.com/siteforge/core/internal/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrTemplateNotFound   = errors.New("template not found")
	ErrTemplateIncomplete = errors.New("template has no pages")
	ErrProvisioningFailed = errors.New("provisioning failed")
)

type CreateTemplateDTO struct {
	Name     string                         `json:"name"     binding:"required"`
	Category string                         `json:"category" binding:"required"`
	Pages    map[string]models.TemplatePage `json:"pages"    binding:"required"`
}

type UpdateTemplateDTO struct {
	Name     *string                        `json:"name"`
	Category *string                        `json:"category"`
	Approved *bool                          `json:"approved"`
	Pages    map[string]models.TemplatePage `json:"pages"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) GetByID(id string) (*models.TemplateModel, error) {
	var tpl models.TemplateModel
	if err := s.db.First(&tpl, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tpl, nil
}

// List returns approved templates, optionally filtered by category.
func (s *Service) List(category string, q pagination.Query) ([]models.TemplateModel, response.Pagination, error) {
	tx := s.db.Model(&models.TemplateModel{}).Where("approved = ?", true).Order("name ASC")
	if category != "" {
		tx = tx.Where("category = ?", category)
	}
	var templates []models.TemplateModel
	pag, err := pagination.Paginate(tx, q, &templates)
	return templates, pag, err
}

func (s *Service) Create(dto *CreateTemplateDTO) (*models.TemplateModel, error) {
	if len(dto.Pages) == 0 {
		return nil, ErrTemplateIncomplete
	}
	tpl := models.TemplateModel{
		Name:     dto.Name,
		Category: dto.Category,
		Pages:    dto.Pages,
	}
	if err := s.db.Create(&tpl).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (s *Service) Update(id string, dto *UpdateTemplateDTO) (*models.TemplateModel, error) {
	tpl, err := s.GetByID(id)
	if err != nil || tpl == nil {
		return tpl, err
	}

	if dto.Name != nil {
		tpl.Name = *dto.Name
	}
	if dto.Category != nil {
		tpl.Category = *dto.Category
	}
	if dto.Approved != nil {
		tpl.Approved = *dto.Approved
	}
	if dto.Pages != nil {
		if len(dto.Pages) == 0 {
			return nil, ErrTemplateIncomplete
		}
		tpl.Pages = dto.Pages
	}

	if err := s.db.Save(tpl).Error; err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *Service) Delete(id string) error {
	return s.db.Delete(&models.TemplateModel{}, "id = ?", id).Error
}
