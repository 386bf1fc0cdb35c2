package handlers

import (
	"strconv"

	"github.com/amirphl/orochi-admin/app/dto"
	businessflow "github.com/amirphl/orochi-admin/business_flow"
	"github.com/gofiber/fiber/v3"
)

// EditorHandlerInterface defines the contract for editor handlers
type EditorHandlerInterface interface {
	Placeholders(c fiber.Ctx) error
	Preview(c fiber.Ctx) error
}

type EditorHandler struct {
	baseHandler
	flow businessflow.EditorFlow
}

func NewEditorHandler(flow businessflow.EditorFlow) *EditorHandler {
	return &EditorHandler{baseHandler: newBaseHandler(), flow: flow}
}

// Placeholders describes the editor toolbar, including the placeholder dropdown
// @Summary Editor toolbar
// @Tags Editor
// @Produce json
// @Security BearerAuth
// @Param read_only query bool false "Describe the toolbar of a read-only editor"
// @Success 200 {object} dto.APIResponse{data=dto.EditorToolbarResponse} "Toolbar retrieved"
// @Router /api/v1/editor/placeholders [get]
func (h *EditorHandler) Placeholders(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/editor/placeholders")
	defer cancel()

	readOnly, _ := strconv.ParseBool(c.Query("read_only"))
	resp, err := h.flow.Toolbar(ctx, readOnly)
	if err != nil {
		return h.flowError(c, err, "Failed to build editor toolbar", "EDITOR_TOOLBAR_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Editor toolbar retrieved successfully", resp)
}

// Preview inserts a placeholder token into content at the cursor
// @Summary Insert placeholder
// @Tags Editor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EditorPreviewRequest true "Content and token"
// @Success 200 {object} dto.APIResponse{data=dto.EditorPreviewResponse} "Placeholder inserted"
// @Failure 409 {object} dto.APIResponse "Editor is read-only"
// @Router /api/v1/editor/preview [post]
func (h *EditorHandler) Preview(c fiber.Ctx) error {
	var req dto.EditorPreviewRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/editor/preview")
	defer cancel()

	resp, err := h.flow.Preview(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to insert placeholder", "EDITOR_COMMAND_FAILED",
			errorStatus{businessflow.IsUnknownPlaceholder, fiber.StatusBadRequest},
			errorStatus{businessflow.IsEditorReadOnly, fiber.StatusConflict},
		)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Placeholder inserted", resp)
}
