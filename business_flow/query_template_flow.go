package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirphl/orochi-admin/app/dto"
	"github.com/amirphl/orochi-admin/app/form"
	"github.com/amirphl/orochi-admin/models"
	"github.com/amirphl/orochi-admin/repository"
	"github.com/amirphl/orochi-admin/utils"
)

// QueryTemplateFlow serves the parameter schemas campaigns are built from
type QueryTemplateFlow interface {
	ListTemplates(ctx context.Context, filter dto.ListTemplatesFilter) (*dto.ListTemplatesResponse, error)
	GetTemplate(ctx context.Context, uuid string) (*dto.QueryTemplateDTO, error)
}

type QueryTemplateFlowImpl struct {
	templateRepo repository.QueryTemplateRepository
}

func NewQueryTemplateFlow(templateRepo repository.QueryTemplateRepository) QueryTemplateFlow {
	return &QueryTemplateFlowImpl{templateRepo: templateRepo}
}

// ListTemplates lists active templates without their schemas
func (f *QueryTemplateFlowImpl) ListTemplates(ctx context.Context, filter dto.ListTemplatesFilter) (*dto.ListTemplatesResponse, error) {
	tf := models.QueryTemplateFilter{IsActive: utils.ToPtr(true)}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		tf.Tag = &tag
	}
	templates, err := f.templateRepo.ByFilter(ctx, tf, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_LIST_FAILED", "Failed to list query templates", err)
	}

	out := make([]dto.QueryTemplateDTO, 0, len(templates))
	for _, t := range templates {
		out = append(out, ToQueryTemplateDTO(*t, nil))
	}
	return &dto.ListTemplatesResponse{Templates: out}, nil
}

// GetTemplate returns a template with its parsed schema
func (f *QueryTemplateFlowImpl) GetTemplate(ctx context.Context, uuid string) (*dto.QueryTemplateDTO, error) {
	template, params, err := loadTemplate(ctx, f.templateRepo, uuid)
	if err != nil {
		return nil, err
	}
	out := ToQueryTemplateDTO(*template, params)
	return &out, nil
}

// loadTemplate fetches an active template and parses its schema
func loadTemplate(ctx context.Context, repo repository.QueryTemplateRepository, uuid string) (*models.QueryTemplate, []models.ParameterDefinition, error) {
	if _, err := utils.ParseUUID(uuid); err != nil {
		return nil, nil, NewBusinessError("TEMPLATE_NOT_FOUND", "Query template not found", ErrTemplateNotFound)
	}
	template, err := repo.ByUUID(ctx, uuid)
	if err != nil {
		return nil, nil, NewBusinessError("TEMPLATE_LOOKUP_FAILED", "Failed to lookup query template", err)
	}
	if template == nil {
		return nil, nil, NewBusinessError("TEMPLATE_NOT_FOUND", "Query template not found", ErrTemplateNotFound)
	}
	if !utils.IsTrue(template.IsActive) {
		return nil, nil, NewBusinessError("TEMPLATE_INACTIVE", "Query template is inactive", ErrTemplateInactive)
	}

	params, err := form.ParseSchema(template.Params)
	if err != nil {
		return nil, nil, NewBusinessError("TEMPLATE_SCHEMA_INVALID", "Query template schema is invalid", fmt.Errorf("%w: %w", ErrTemplateSchemaInvalid, err))
	}
	return template, params, nil
}
