// Package form turns a parameter schema into rendered, validated, stateful input forms
package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMissingOptions is wrapped by configuration errors for option-based fields without a usable options list
var ErrMissingOptions = errors.New("options must be a list")

// ConfigurationError reports a malformed parameter schema. The affected field renders as absent.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "invalid form configuration"
	if e.Field != "" {
		msg += fmt.Sprintf(" for field %q", e.Field)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// ValidationError is attached to a single field and cleared when that field changes
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidationErrors maps a field name to its current error message
type ValidationErrors map[string]string

// Clone returns an independent copy
func (v ValidationErrors) Clone() ValidationErrors {
	out := make(ValidationErrors, len(v))
	for k, msg := range v {
		out[k] = msg
	}
	return out
}

// Error implements error so a non-empty set can be returned directly
func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
