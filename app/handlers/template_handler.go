package handlers

import (
	"github.com/amirphl/orochi-admin/app/dto"
	businessflow "github.com/amirphl/orochi-admin/business_flow"
	"github.com/gofiber/fiber/v3"
)

// TemplateHandlerInterface defines the contract for query template handlers
type TemplateHandlerInterface interface {
	ListTemplates(c fiber.Ctx) error
	GetTemplate(c fiber.Ctx) error
}

type TemplateHandler struct {
	baseHandler
	flow businessflow.QueryTemplateFlow
}

func NewTemplateHandler(flow businessflow.QueryTemplateFlow) *TemplateHandler {
	return &TemplateHandler{baseHandler: newBaseHandler(), flow: flow}
}

var templateErrorStatuses = []errorStatus{
	{businessflow.IsTemplateNotFound, fiber.StatusNotFound},
	{businessflow.IsTemplateInactive, fiber.StatusNotFound},
	{businessflow.IsTemplateSchemaInvalid, fiber.StatusUnprocessableEntity},
}

// ListTemplates lists active query templates
// @Summary List query templates
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Param tag query string false "Only templates carrying this tag"
// @Success 200 {object} dto.APIResponse{data=dto.ListTemplatesResponse} "Templates retrieved"
// @Router /api/v1/templates [get]
func (h *TemplateHandler) ListTemplates(c fiber.Ctx) error {
	var filter dto.ListTemplatesFilter
	if err := c.Bind().Query(&filter); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_QUERY", err.Error())
	}
	if ok, err := h.validate(c, &filter); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/templates")
	defer cancel()

	resp, err := h.flow.ListTemplates(ctx, filter)
	if err != nil {
		return h.flowError(c, err, "Failed to list query templates", "TEMPLATE_LIST_FAILED", templateErrorStatuses...)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Query templates retrieved successfully", resp)
}

// GetTemplate returns a query template with its parameter schema
// @Summary Get query template
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Template UUID"
// @Success 200 {object} dto.APIResponse{data=dto.QueryTemplateDTO} "Template retrieved"
// @Router /api/v1/templates/{uuid} [get]
func (h *TemplateHandler) GetTemplate(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/templates/:uuid")
	defer cancel()

	resp, err := h.flow.GetTemplate(ctx, c.Params("uuid"))
	if err != nil {
		return h.flowError(c, err, "Failed to load query template", "TEMPLATE_LOOKUP_FAILED", templateErrorStatuses...)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Query template retrieved successfully", resp)
}
