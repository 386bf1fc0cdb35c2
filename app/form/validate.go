package form

import (
	"slices"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/amirphl/orochi-admin/models"
)

// FieldValidator checks submitted values against their parameter definitions
type FieldValidator struct {
	validate *validator.Validate
}

// NewFieldValidator creates a field validator
func NewFieldValidator() *FieldValidator {
	return &FieldValidator{validate: validator.New()}
}

// Field validates one parameter and returns a *ValidationError or nil
func (v *FieldValidator) Field(p models.ParameterDefinition, values ValueSet) error {
	switch p.Type.Normalize() {
	case models.ParameterTypeBoolean:
		return nil
	case models.ParameterTypeMultiSelect:
		selected := values.Strings(p.Name)
		if p.Required && len(selected) == 0 {
			return &ValidationError{Field: p.Name, Message: "select at least one option"}
		}
		for _, s := range selected {
			if !slices.Contains(p.Options, s) {
				return &ValidationError{Field: p.Name, Message: strconv.Quote(s) + " is not one of the available options"}
			}
		}
		return nil
	case models.ParameterTypeSearch:
		if p.Required && v.validate.Var(values.String(p.ParamKey()), "required") != nil {
			return &ValidationError{Field: p.Name, Message: "this field is required"}
		}
		return nil
	}

	value := values.String(p.Name)
	if value == "" {
		if p.Required {
			return &ValidationError{Field: p.Name, Message: "this field is required"}
		}
		return nil
	}

	switch p.Type.Normalize() {
	case models.ParameterTypeNumeric:
		if v.validate.Var(value, "numeric") != nil {
			return &ValidationError{Field: p.Name, Message: "must be a number"}
		}
	case models.ParameterTypeInteger:
		if v.validate.Var(value, "numeric") != nil {
			return &ValidationError{Field: p.Name, Message: "must be a whole number"}
		}
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return &ValidationError{Field: p.Name, Message: "must be a whole number"}
		}
	case models.ParameterTypeDate:
		if v.validate.Var(value, "datetime=2006-01-02") != nil {
			return &ValidationError{Field: p.Name, Message: "date must be formatted as YYYY-MM-DD"}
		}
	case models.ParameterTypeDropdown, models.ParameterTypeAutocomplete:
		if p.Options != nil && !slices.Contains(p.Options, value) {
			return &ValidationError{Field: p.Name, Message: strconv.Quote(value) + " is not one of the available options"}
		}
	}
	return nil
}

// All validates every parameter and returns the failures keyed by field name
func (v *FieldValidator) All(params []models.ParameterDefinition, values ValueSet) ValidationErrors {
	errs := ValidationErrors{}
	for _, p := range params {
		if err := v.Field(p, values); err != nil {
			if ve, ok := err.(*ValidationError); ok {
				errs[p.Name] = ve.Message
			}
		}
	}
	return errs
}
