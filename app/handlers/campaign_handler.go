package handlers

import (
	"github.com/amirphl/orochi-admin/app/dto"
	businessflow "github.com/amirphl/orochi-admin/business_flow"
	"github.com/gofiber/fiber/v3"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CampaignHandlerInterface defines the contract for campaign handlers
type CampaignHandlerInterface interface {
	Board(c fiber.Ctx) error
	ExportBoard(c fiber.Ctx) error
	CreateCampaign(c fiber.Ctx) error
	UpdateCampaign(c fiber.Ctx) error
	SetFavourite(c fiber.Ctx) error
	DeleteCampaign(c fiber.Ctx) error
	Criteria(c fiber.Ctx) error
}

// CampaignHandler handles campaign board HTTP requests
type CampaignHandler struct {
	baseHandler
	campaignFlow businessflow.CampaignFlow
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignFlow businessflow.CampaignFlow) *CampaignHandler {
	return &CampaignHandler{
		baseHandler:  newBaseHandler(),
		campaignFlow: campaignFlow,
	}
}

var campaignErrorStatuses = []errorStatus{
	{businessflow.IsCampaignNotFound, fiber.StatusNotFound},
	{businessflow.IsCampaignUUIDRequired, fiber.StatusBadRequest},
	{businessflow.IsCampaignNameRequired, fiber.StatusBadRequest},
	{businessflow.IsCampaignUpdateRequired, fiber.StatusBadRequest},
	{businessflow.IsCampaignStatusInvalid, fiber.StatusBadRequest},
	{businessflow.IsMalformedCriteria, fiber.StatusUnprocessableEntity},
	{businessflow.IsTemplateNotFound, fiber.StatusBadRequest},
}

func (h *CampaignHandler) boardFilter(c fiber.Ctx) (dto.CampaignBoardFilter, bool, error) {
	var filter dto.CampaignBoardFilter
	if err := c.Bind().Query(&filter); err != nil {
		return filter, false, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_QUERY", err.Error())
	}
	if ok, err := h.validate(c, &filter); !ok {
		return filter, false, err
	}
	return filter, true, nil
}

// Board returns campaigns grouped into date buckets
// @Summary Campaign board
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive name filter"
// @Param favourites query bool false "Only favourites"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignBoardResponse} "Board retrieved"
// @Router /api/v1/campaigns [get]
func (h *CampaignHandler) Board(c fiber.Ctx) error {
	filter, ok, err := h.boardFilter(c)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/campaigns")
	defer cancel()

	board, err := h.campaignFlow.Board(ctx, filter)
	if err != nil {
		return h.flowError(c, err, "Failed to load campaign board", "CAMPAIGN_LIST_FAILED", campaignErrorStatuses...)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign board retrieved successfully", board)
}

// ExportBoard streams the board as an xlsx workbook, one sheet per bucket
// @Summary Export campaign board
// @Tags Campaigns
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Router /api/v1/campaigns/export [get]
func (h *CampaignHandler) ExportBoard(c fiber.Ctx) error {
	filter, ok, err := h.boardFilter(c)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/campaigns/export")
	defer cancel()

	filename, content, err := h.campaignFlow.ExportBoard(ctx, filter)
	if err != nil {
		return h.flowError(c, err, "Failed to export campaign board", "CAMPAIGN_EXPORT_FAILED", campaignErrorStatuses...)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Status(fiber.StatusOK).Send(content)
}

// CreateCampaign creates a board record
// @Summary Create campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCampaignRequest true "Campaign data"
// @Success 201 {object} dto.APIResponse{data=dto.CampaignDTO} "Campaign created"
// @Router /api/v1/campaigns [post]
func (h *CampaignHandler) CreateCampaign(c fiber.Ctx) error {
	var req dto.CreateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/campaigns")
	defer cancel()

	campaign, err := h.campaignFlow.CreateCampaign(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to create campaign", "CAMPAIGN_CREATE_FAILED", campaignErrorStatuses...)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Campaign created successfully", campaign)
}

// UpdateCampaign updates the provided fields of a campaign
// @Summary Update campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Param request body dto.UpdateCampaignRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignDTO} "Campaign updated"
// @Router /api/v1/campaigns/{uuid} [put]
func (h *CampaignHandler) UpdateCampaign(c fiber.Ctx) error {
	var req dto.UpdateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/campaigns/:uuid")
	defer cancel()

	campaign, err := h.campaignFlow.UpdateCampaign(ctx, c.Params("uuid"), &req)
	if err != nil {
		return h.flowError(c, err, "Failed to update campaign", "CAMPAIGN_UPDATE_FAILED", campaignErrorStatuses...)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign updated successfully", campaign)
}

// SetFavourite flags or unflags a campaign as favourite
// @Summary Set campaign favourite
// @Tags Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Param request body dto.SetFavouriteRequest true "Favourite flag"
// @Router /api/v1/campaigns/{uuid}/favourite [put]
func (h *CampaignHandler) SetFavourite(c fiber.Ctx) error {
	var req dto.SetFavouriteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/campaigns/:uuid/favourite")
	defer cancel()

	campaign, err := h.campaignFlow.SetFavourite(ctx, c.Params("uuid"), *req.Favourite)
	if err != nil {
		return h.flowError(c, err, "Failed to update favourite", "CAMPAIGN_UPDATE_FAILED", campaignErrorStatuses...)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign updated successfully", campaign)
}

// DeleteCampaign removes a campaign
// @Summary Delete campaign
// @Tags Campaigns
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Router /api/v1/campaigns/{uuid} [delete]
func (h *CampaignHandler) DeleteCampaign(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/campaigns/:uuid")
	defer cancel()

	if err := h.campaignFlow.DeleteCampaign(ctx, c.Params("uuid")); err != nil {
		return h.flowError(c, err, "Failed to delete campaign", "CAMPAIGN_DELETE_FAILED", campaignErrorStatuses...)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign deleted successfully", nil)
}

// Criteria returns the decoded criteria of a campaign for its tooltip
// @Summary Campaign criteria
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignCriteriaResponse} "Criteria retrieved"
// @Failure 422 {object} dto.APIResponse "Stored criteria are malformed"
// @Router /api/v1/campaigns/{uuid}/criteria [get]
func (h *CampaignHandler) Criteria(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/campaigns/:uuid/criteria")
	defer cancel()

	resp, err := h.campaignFlow.Criteria(ctx, c.Params("uuid"))
	if err != nil {
		return h.flowError(c, err, "Failed to load campaign criteria", "CAMPAIGN_CRITERIA_FAILED", campaignErrorStatuses...)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign criteria retrieved successfully", resp)
}
