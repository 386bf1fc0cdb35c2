package handlers

import (
	"errors"

	"github.com/amirphl/orochi-admin/app/dto"
	"github.com/amirphl/orochi-admin/app/form"
	businessflow "github.com/amirphl/orochi-admin/business_flow"
	"github.com/gofiber/fiber/v3"
)

// FormHandlerInterface defines the contract for form session handlers
type FormHandlerInterface interface {
	OpenForm(c fiber.Ctx) error
	GetForm(c fiber.Ctx) error
	ApplyField(c fiber.Ctx) error
	SubmitForm(c fiber.Ctx) error
	CloseForm(c fiber.Ctx) error
}

// FormHandler serves the server-side form sessions
type FormHandler struct {
	baseHandler
	flow businessflow.FormFlow
}

func NewFormHandler(flow businessflow.FormFlow) *FormHandler {
	return &FormHandler{baseHandler: newBaseHandler(), flow: flow}
}

var formErrorStatuses = []errorStatus{
	{businessflow.IsTemplateNotFound, fiber.StatusNotFound},
	{businessflow.IsTemplateInactive, fiber.StatusNotFound},
	{businessflow.IsTemplateSchemaInvalid, fiber.StatusUnprocessableEntity},
	{businessflow.IsFormSessionNotFound, fiber.StatusNotFound},
	{businessflow.IsFormFieldNotFound, fiber.StatusNotFound},
	{businessflow.IsFormFieldMisconfigured, fiber.StatusUnprocessableEntity},
	{businessflow.IsTooManyFormSessions, fiber.StatusTooManyRequests},
	{businessflow.IsOptionsUnavailable, fiber.StatusBadGateway},
	{businessflow.IsCampaignNameRequired, fiber.StatusBadRequest},
}

// OpenForm opens a form session for a query template
// @Summary Open form
// @Tags Forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.OpenFormRequest true "Template to open"
// @Success 201 {object} dto.APIResponse{data=dto.FormSessionResponse} "Form opened"
// @Failure 502 {object} dto.APIResponse "Remote options could not be loaded"
// @Router /api/v1/forms [post]
func (h *FormHandler) OpenForm(c fiber.Ctx) error {
	var req dto.OpenFormRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/forms")
	defer cancel()

	resp, err := h.flow.OpenForm(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to open form", "FORM_OPEN_FAILED", formErrorStatuses...)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Form opened successfully", resp)
}

// GetForm returns the rendered state of a form session
// @Summary Get form
// @Tags Forms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Form session id"
// @Success 200 {object} dto.APIResponse{data=dto.FormSessionResponse} "Form retrieved"
// @Router /api/v1/forms/{id} [get]
func (h *FormHandler) GetForm(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/forms/:id")
	defer cancel()

	resp, err := h.flow.GetForm(ctx, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "Failed to load form", "FORM_LOOKUP_FAILED", formErrorStatuses...)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Form retrieved successfully", resp)
}

// ApplyField applies one user edit; invalid input comes back in the response errors
// @Summary Apply field input
// @Tags Forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Form session id"
// @Param name path string true "Field name"
// @Param request body dto.ApplyFieldRequest true "Field input"
// @Success 200 {object} dto.APIResponse{data=dto.FormSessionResponse} "Field applied"
// @Router /api/v1/forms/{id}/fields/{name} [patch]
func (h *FormHandler) ApplyField(c fiber.Ctx) error {
	var req dto.ApplyFieldRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/forms/:id/fields/:name")
	defer cancel()

	resp, err := h.flow.ApplyField(ctx, c.Params("id"), c.Params("name"), &req)
	if err != nil {
		return h.flowError(c, err, "Failed to apply field", "FORM_APPLY_FAILED", formErrorStatuses...)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Field applied", resp)
}

// SubmitForm validates the form and creates a draft campaign from it
// @Summary Submit form
// @Tags Forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Form session id"
// @Param request body dto.SubmitFormRequest true "Draft campaign name"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitFormResponse} "Draft campaign created"
// @Failure 422 {object} dto.APIResponse "Field validation errors"
// @Router /api/v1/forms/{id}/submit [post]
func (h *FormHandler) SubmitForm(c fiber.Ctx) error {
	var req dto.SubmitFormRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/forms/:id/submit")
	defer cancel()

	resp, err := h.flow.SubmitForm(ctx, c.Params("id"), &req)
	if err != nil {
		if businessflow.IsFormInvalid(err) {
			var fieldErrs form.ValidationErrors
			errors.As(err, &fieldErrs)
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Form has validation errors", "FORM_INVALID", fieldErrs)
		}
		return h.flowError(c, err, "Failed to submit form", "FORM_SUBMIT_FAILED", formErrorStatuses...)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Draft campaign created successfully", resp)
}

// CloseForm tears a form session down
// @Summary Close form
// @Tags Forms
// @Security BearerAuth
// @Param id path string true "Form session id"
// @Router /api/v1/forms/{id} [delete]
func (h *FormHandler) CloseForm(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/forms/:id")
	defer cancel()

	if err := h.flow.CloseForm(ctx, c.Params("id")); err != nil {
		return h.flowError(c, err, "Failed to close form", "FORM_CLOSE_FAILED", formErrorStatuses...)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Form closed", nil)
}
