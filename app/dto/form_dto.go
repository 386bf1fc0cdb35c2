package dto

import "github.com/amirphl/orochi-admin/app/form"

// OpenFormRequest starts a form session for a query template
type OpenFormRequest struct {
	TemplateUUID string `json:"template_uuid" validate:"required,uuid"`
}

// FormSessionResponse is the rendered state of a form session
type FormSessionResponse struct {
	SessionID           string                         `json:"session_id"`
	Controls            []form.Control                 `json:"controls"`
	Values              map[string]any                 `json:"values"`
	Errors              map[string]string              `json:"errors,omitempty"`
	ConfigurationErrors []string                       `json:"configuration_errors,omitempty"`
	Results             map[string][]form.SearchResult `json:"results,omitempty"`
}

// ApplyFieldRequest is one user edit of a field
type ApplyFieldRequest struct {
	Text     string   `json:"text"`
	Checked  bool     `json:"checked"`
	Selected []string `json:"selected"`
}

// SubmitFormRequest names the draft campaign created from a valid form
type SubmitFormRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=5000"`
}

// SubmitFormResponse carries the created draft and its encoded criteria
type SubmitFormResponse struct {
	Campaign CampaignDTO       `json:"campaign"`
	Criteria []CriteriaPairDTO `json:"criteria"`
}
