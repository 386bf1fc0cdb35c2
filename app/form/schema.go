package form

import (
	"encoding/json"
	"strings"

	"github.com/amirphl/orochi-admin/models"
)

// ParseSchema decodes a stored parameter schema (a JSON array of parameter definitions).
// Per-field option problems are left for the renderer to report; structural problems
// (not an array, unnamed or duplicate fields) fail the whole schema.
func ParseSchema(raw string) ([]models.ParameterDefinition, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []models.ParameterDefinition{}, nil
	}

	var params []models.ParameterDefinition
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, &ConfigurationError{Reason: "parameter schema is not a JSON array of definitions", Err: err}
	}

	seen := make(map[string]struct{}, len(params))
	for i := range params {
		name := strings.TrimSpace(params[i].Name)
		if name == "" {
			return nil, &ConfigurationError{Reason: "parameter without a name"}
		}
		if _, dup := seen[name]; dup {
			return nil, &ConfigurationError{Field: name, Reason: "duplicate parameter name"}
		}
		seen[name] = struct{}{}
		params[i].Name = name
		if params[i].Label == "" {
			params[i].Label = name
		}
	}
	return params, nil
}
