// Package businessflow contains the core business logic and use cases of the admin service
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Admin-related errors
	ErrAdminNotFound     = errors.New("admin not found")
	ErrAdminInactive     = errors.New("admin is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrInvalidToken      = errors.New("invalid token")

	// Campaign-related errors
	ErrCampaignNotFound       = errors.New("campaign not found")
	ErrCampaignUUIDRequired   = errors.New("campaign UUID is required")
	ErrCampaignNameRequired   = errors.New("campaign name is required")
	ErrCampaignUpdateRequired = errors.New("at least one field must be provided for update")
	ErrCampaignStatusInvalid  = errors.New("campaign status is invalid")
	ErrMalformedCriteria      = errors.New("campaign criteria are malformed")

	// Query template errors
	ErrTemplateNotFound      = errors.New("query template not found")
	ErrTemplateInactive      = errors.New("query template is inactive")
	ErrTemplateSchemaInvalid = errors.New("query template schema is invalid")

	// Form session errors
	ErrFormSessionNotFound    = errors.New("form session not found")
	ErrFormFieldNotFound      = errors.New("form field not found")
	ErrFormFieldMisconfigured = errors.New("form field is misconfigured")
	ErrFormInvalid            = errors.New("form has validation errors")
	ErrTooManyFormSessions    = errors.New("too many open form sessions")
	ErrOptionsUnavailable     = errors.New("field options are unavailable")

	// Editor errors
	ErrUnknownPlaceholder = errors.New("unknown placeholder")
	ErrEditorReadOnly     = errors.New("editor is read-only")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsAdminInactive(err error) bool {
	return errors.Is(err, ErrAdminInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCampaignUUIDRequired(err error) bool {
	return errors.Is(err, ErrCampaignUUIDRequired)
}

func IsCampaignNameRequired(err error) bool {
	return errors.Is(err, ErrCampaignNameRequired)
}

func IsCampaignUpdateRequired(err error) bool {
	return errors.Is(err, ErrCampaignUpdateRequired)
}

func IsCampaignStatusInvalid(err error) bool {
	return errors.Is(err, ErrCampaignStatusInvalid)
}

func IsMalformedCriteria(err error) bool {
	return errors.Is(err, ErrMalformedCriteria)
}

func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

func IsTemplateInactive(err error) bool {
	return errors.Is(err, ErrTemplateInactive)
}

func IsTemplateSchemaInvalid(err error) bool {
	return errors.Is(err, ErrTemplateSchemaInvalid)
}

func IsFormSessionNotFound(err error) bool {
	return errors.Is(err, ErrFormSessionNotFound)
}

func IsFormFieldNotFound(err error) bool {
	return errors.Is(err, ErrFormFieldNotFound)
}

func IsFormFieldMisconfigured(err error) bool {
	return errors.Is(err, ErrFormFieldMisconfigured)
}

func IsFormInvalid(err error) bool {
	return errors.Is(err, ErrFormInvalid)
}

func IsTooManyFormSessions(err error) bool {
	return errors.Is(err, ErrTooManyFormSessions)
}

func IsOptionsUnavailable(err error) bool {
	return errors.Is(err, ErrOptionsUnavailable)
}

func IsUnknownPlaceholder(err error) bool {
	return errors.Is(err, ErrUnknownPlaceholder)
}

func IsEditorReadOnly(err error) bool {
	return errors.Is(err, ErrEditorReadOnly)
}

// BusinessCode returns the code of the first BusinessError in err's chain
func BusinessCode(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
