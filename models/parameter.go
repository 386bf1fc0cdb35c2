package models

import (
	"bytes"
	"encoding/json"
)

// ParameterType is the kind of input control a query parameter renders as
type ParameterType string

const (
	ParameterTypeNumeric      ParameterType = "numeric"
	ParameterTypeInteger      ParameterType = "integer"
	ParameterTypeBoolean      ParameterType = "boolean"
	ParameterTypeDropdown     ParameterType = "dropdown"
	ParameterTypeAutocomplete ParameterType = "autocomplete"
	ParameterTypeMultiSelect  ParameterType = "multi-select"
	ParameterTypeDate         ParameterType = "date"
	ParameterTypeSearch       ParameterType = "search"
	ParameterTypeText         ParameterType = "text"
)

// ParameterTypes lists every supported parameter type
var ParameterTypes = []ParameterType{
	ParameterTypeNumeric,
	ParameterTypeInteger,
	ParameterTypeBoolean,
	ParameterTypeDropdown,
	ParameterTypeAutocomplete,
	ParameterTypeMultiSelect,
	ParameterTypeDate,
	ParameterTypeSearch,
	ParameterTypeText,
}

// String returns the string representation of the type
func (t ParameterType) String() string {
	return string(t)
}

// Valid checks if the type is one of the supported types
func (t ParameterType) Valid() bool {
	for _, known := range ParameterTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Normalize maps unknown or missing types to text
func (t ParameterType) Normalize() ParameterType {
	if t.Valid() {
		return t
	}
	return ParameterTypeText
}

// NeedsOptions reports whether the type selects from an options list
func (t ParameterType) NeedsOptions() bool {
	switch t {
	case ParameterTypeDropdown, ParameterTypeAutocomplete, ParameterTypeMultiSelect:
		return true
	default:
		return false
	}
}

// ParameterSourceAPI marks parameters whose options are fetched from APIEndpoint
const ParameterSourceAPI = "api"

// OptionList is an ordered list of selectable values.
// A nil list means the options were absent or not a JSON array of strings.
type OptionList []string

// UnmarshalJSON accepts only an array of strings; anything else decodes to nil
// so the schema still loads and the field reports a configuration error when rendered.
func (o *OptionList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		*o = nil
		return nil
	}
	var values []string
	if err := json.Unmarshal(trimmed, &values); err != nil {
		*o = nil
		return nil
	}
	if values == nil {
		values = []string{}
	}
	*o = values
	return nil
}

// ParameterDefinition describes one input field of a query template
type ParameterDefinition struct {
	Name        string        `json:"name"`
	Label       string        `json:"label,omitempty"`
	Description string        `json:"description,omitempty"`
	Type        ParameterType `json:"type,omitempty"`
	Options     OptionList    `json:"options,omitempty"`
	Source      string        `json:"source,omitempty"`
	APIEndpoint string        `json:"apiEndpoint,omitempty"`
	Required    bool          `json:"required,omitempty"`
	Default     string        `json:"default,omitempty"`
}

// IsRemote reports whether the options must be fetched from the API endpoint
func (p ParameterDefinition) IsRemote() bool {
	return p.Source == ParameterSourceAPI && p.APIEndpoint != ""
}

// IDsKey is the value-set key holding the search lookup result fragment
func (p ParameterDefinition) IDsKey() string {
	return p.Name + "_ids"
}

// ParamKey is the value-set key holding the search text
func (p ParameterDefinition) ParamKey() string {
	return p.Name + "_param"
}
