package dto

import "time"

// CampaignDTO is a board record
type CampaignDTO struct {
	ID                uint    `json:"id"`
	UUID              string  `json:"uuid"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Status            string  `json:"status"`
	StatusDisplayName string  `json:"status_display_name"`
	StatusColor       string  `json:"status_color"`
	Favourite         bool    `json:"favourite"`
	QueryTemplateID   *uint   `json:"query_template_id,omitempty"`
	Params            *string `json:"params,omitempty"`
	StartDate         *string `json:"start_date,omitempty"`
	CreatedDate       string  `json:"created_date"`
	UpdatedAt         *string `json:"updated_at,omitempty"`
}

// CampaignBoardFilter narrows the board before grouping
type CampaignBoardFilter struct {
	Search     string `query:"search" validate:"max=255"`
	Favourites bool   `query:"favourites"`
}

// CampaignBoardResponse is the grouped board. Order lists bucket keys in display order.
type CampaignBoardResponse struct {
	Order  []string                 `json:"order"`
	Groups map[string][]CampaignDTO `json:"groups"`
	Counts map[string]int           `json:"counts"`
	Total  int                      `json:"total"`
}

// CreateCampaignRequest creates a board record
type CreateCampaignRequest struct {
	Name              string     `json:"name" validate:"required,min=1,max=255"`
	Description       string     `json:"description" validate:"max=5000"`
	Status            string     `json:"status" validate:"omitempty,oneof=draft ready running completed failed cancelled"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	QueryTemplateUUID *string    `json:"query_template_uuid,omitempty" validate:"omitempty,uuid"`
	Params            *string    `json:"params,omitempty"`
}

// UpdateCampaignRequest updates the provided fields of a board record
type UpdateCampaignRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=draft ready running completed failed cancelled"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	Params      *string    `json:"params,omitempty"`
}

// SetFavouriteRequest flags a campaign as favourite
type SetFavouriteRequest struct {
	Favourite *bool `json:"favourite" validate:"required"`
}

// CriteriaPairDTO is one line of the criteria tooltip
type CriteriaPairDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CampaignCriteriaResponse lists the decoded criteria of a campaign
type CampaignCriteriaResponse struct {
	UUID     string            `json:"uuid"`
	Criteria []CriteriaPairDTO `json:"criteria"`
}
