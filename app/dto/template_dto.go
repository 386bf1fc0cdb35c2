package dto

import "github.com/amirphl/orochi-admin/models"

// QueryTemplateDTO is a template with its parsed parameter schema
type QueryTemplateDTO struct {
	ID          uint                         `json:"id"`
	UUID        string                       `json:"uuid"`
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	Tags        []string                     `json:"tags"`
	Params      []models.ParameterDefinition `json:"params,omitempty"`
}

// ListTemplatesFilter narrows the template list
type ListTemplatesFilter struct {
	Tag string `query:"tag" validate:"max=100"`
}

type ListTemplatesResponse struct {
	Templates []QueryTemplateDTO `json:"templates"`
}
