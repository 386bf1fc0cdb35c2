package businessflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/orochi-admin/app/criteria"
	"github.com/amirphl/orochi-admin/app/dto"
	"github.com/amirphl/orochi-admin/app/grouping"
	"github.com/amirphl/orochi-admin/models"
	"github.com/amirphl/orochi-admin/repository"
	"github.com/amirphl/orochi-admin/utils"
	"github.com/xuri/excelize/v2"
)

// CampaignFlow handles the campaign board and campaign records
type CampaignFlow interface {
	Board(ctx context.Context, filter dto.CampaignBoardFilter) (*dto.CampaignBoardResponse, error)
	ExportBoard(ctx context.Context, filter dto.CampaignBoardFilter) (string, []byte, error)
	CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest) (*dto.CampaignDTO, error)
	UpdateCampaign(ctx context.Context, uuid string, req *dto.UpdateCampaignRequest) (*dto.CampaignDTO, error)
	SetFavourite(ctx context.Context, uuid string, favourite bool) (*dto.CampaignDTO, error)
	DeleteCampaign(ctx context.Context, uuid string) error
	Criteria(ctx context.Context, uuid string) (*dto.CampaignCriteriaResponse, error)
}

// CampaignFlowImpl implements the campaign business flow
type CampaignFlowImpl struct {
	campaignRepo repository.CampaignRepository
	templateRepo repository.QueryTemplateRepository
	cache        *BoardCache
	now          func() time.Time
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	templateRepo repository.QueryTemplateRepository,
	cache *BoardCache,
	now func() time.Time,
) CampaignFlow {
	if now == nil {
		now = utils.UTCNow
	}
	return &CampaignFlowImpl{
		campaignRepo: campaignRepo,
		templateRepo: templateRepo,
		cache:        cache,
		now:          now,
	}
}

// records loads every campaign, from the board cache when possible
func (s *CampaignFlowImpl) records(ctx context.Context) ([]*models.Campaign, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return cached, nil
	}
	records, err := s.campaignRepo.ByFilter(ctx, models.CampaignFilter{}, "", 0, 0)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, records)
	return records, nil
}

func (s *CampaignFlowImpl) board(ctx context.Context, filter dto.CampaignBoardFilter) (grouping.GroupedRecords, error) {
	records, err := s.records(ctx)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}
	return grouping.Board(records, filter.Search, filter.Favourites, s.now()), nil
}

// Board returns the filtered campaigns sorted newest first and split into date buckets
func (s *CampaignFlowImpl) Board(ctx context.Context, filter dto.CampaignBoardFilter) (*dto.CampaignBoardResponse, error) {
	groups, err := s.board(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.CampaignBoardResponse{
		Order:  make([]string, 0, len(grouping.Keys)),
		Groups: make(map[string][]dto.CampaignDTO, len(grouping.Keys)),
		Counts: make(map[string]int, len(grouping.Keys)),
		Total:  grouping.Total(groups),
	}
	for _, bucket := range grouping.Keys {
		key := string(bucket)
		items := make([]dto.CampaignDTO, 0, len(groups[bucket]))
		for _, c := range groups[bucket] {
			items = append(items, ToCampaignDTO(*c))
		}
		resp.Order = append(resp.Order, key)
		resp.Groups[key] = items
		resp.Counts[key] = len(items)
	}
	return resp, nil
}

var exportHeader = []any{"ID", "UUID", "Name", "Status", "Favourite", "Start Date", "Created Date", "Criteria"}

// ExportBoard renders the board as an Excel workbook with one sheet per bucket
func (s *CampaignFlowImpl) ExportBoard(ctx context.Context, filter dto.CampaignBoardFilter) (string, []byte, error) {
	groups, err := s.board(ctx, filter)
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	for i, bucket := range grouping.Keys {
		name := string(bucket)
		if i == 0 {
			if err := xl.SetSheetName(xl.GetSheetName(0), name); err != nil {
				return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
			}
		} else if _, err := xl.NewSheet(name); err != nil {
			return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
		}

		header := exportHeader
		if err := xl.SetSheetRow(name, "A1", &header); err != nil {
			return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
		}
		for ri, c := range groups[bucket] {
			startDate := ""
			if c.StartDate != nil {
				startDate = c.StartDate.Format(time.RFC3339)
			}
			record := []any{
				c.ID,
				c.UUID.String(),
				c.Name,
				c.GetStatusDisplayName(),
				c.Favourite,
				startDate,
				c.CreatedAt.Format(time.RFC3339),
				criteriaSummary(c.Params),
			}
			cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
			if err := xl.SetSheetRow(name, cellRef, &record); err != nil {
				return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
			}
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := fmt.Sprintf("campaigns_%s.xlsx", s.now().Format("20060102"))
	return filename, buf.Bytes(), nil
}

// criteriaSummary renders criteria as "key: value" lines; malformed criteria export as-is
func criteriaSummary(params *string) string {
	pairs, err := criteria.Parse(params)
	if err != nil {
		return *params
	}
	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, p.Key+": "+p.Value)
	}
	return strings.Join(lines, "\n")
}

func (s *CampaignFlowImpl) CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest) (*dto.CampaignDTO, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, NewBusinessError("CAMPAIGN_NAME_REQUIRED", "Campaign name is required", ErrCampaignNameRequired)
	}

	status := models.CampaignStatusDraft
	if req.Status != "" {
		status = models.CampaignStatus(req.Status)
		if !status.Valid() {
			return nil, NewBusinessError("CAMPAIGN_STATUS_INVALID", "Campaign status is invalid", ErrCampaignStatusInvalid)
		}
	}
	if err := checkCriteria(req.Params); err != nil {
		return nil, err
	}

	campaign := &models.Campaign{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      status,
		Params:      req.Params,
		StartDate:   utcPtr(req.StartDate),
	}

	if req.QueryTemplateUUID != nil {
		if _, err := utils.ParseUUID(*req.QueryTemplateUUID); err != nil {
			return nil, NewBusinessError("TEMPLATE_NOT_FOUND", "Query template not found", ErrTemplateNotFound)
		}
		template, err := s.templateRepo.ByUUID(ctx, *req.QueryTemplateUUID)
		if err != nil {
			return nil, NewBusinessError("TEMPLATE_LOOKUP_FAILED", "Failed to lookup query template", err)
		}
		if template == nil {
			return nil, NewBusinessError("TEMPLATE_NOT_FOUND", "Query template not found", ErrTemplateNotFound)
		}
		campaign.QueryTemplateID = &template.ID
	}

	if err := s.campaignRepo.Save(ctx, campaign); err != nil {
		return nil, NewBusinessError("CAMPAIGN_CREATE_FAILED", "Failed to create campaign", err)
	}
	s.cache.Invalidate(ctx)

	out := ToCampaignDTO(*campaign)
	return &out, nil
}

func (s *CampaignFlowImpl) UpdateCampaign(ctx context.Context, uuid string, req *dto.UpdateCampaignRequest) (*dto.CampaignDTO, error) {
	if req == nil || (req.Name == nil && req.Description == nil && req.Status == nil && req.StartDate == nil && req.Params == nil) {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_REQUIRED", "At least one field must be provided", ErrCampaignUpdateRequired)
	}

	campaign, err := s.byUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewBusinessError("CAMPAIGN_NAME_REQUIRED", "Campaign name is required", ErrCampaignNameRequired)
		}
		campaign.Name = name
	}
	if req.Description != nil {
		campaign.Description = *req.Description
	}
	if req.Status != nil {
		status := models.CampaignStatus(*req.Status)
		if !status.Valid() {
			return nil, NewBusinessError("CAMPAIGN_STATUS_INVALID", "Campaign status is invalid", ErrCampaignStatusInvalid)
		}
		campaign.Status = status
	}
	if req.StartDate != nil {
		campaign.StartDate = utcPtr(req.StartDate)
	}
	if req.Params != nil {
		if err := checkCriteria(req.Params); err != nil {
			return nil, err
		}
		campaign.Params = req.Params
	}

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_FAILED", "Failed to update campaign", err)
	}
	s.cache.Invalidate(ctx)

	out := ToCampaignDTO(*campaign)
	return &out, nil
}

func (s *CampaignFlowImpl) SetFavourite(ctx context.Context, uuid string, favourite bool) (*dto.CampaignDTO, error) {
	campaign, err := s.byUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if err := s.campaignRepo.SetFavourite(ctx, campaign.ID, favourite); err != nil {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_FAILED", "Failed to update campaign", err)
	}
	s.cache.Invalidate(ctx)

	campaign.Favourite = favourite
	out := ToCampaignDTO(*campaign)
	return &out, nil
}

func (s *CampaignFlowImpl) DeleteCampaign(ctx context.Context, uuid string) error {
	campaign, err := s.byUUID(ctx, uuid)
	if err != nil {
		return err
	}
	if err := s.campaignRepo.Delete(ctx, campaign.ID); err != nil {
		return NewBusinessError("CAMPAIGN_DELETE_FAILED", "Failed to delete campaign", err)
	}
	s.cache.Invalidate(ctx)
	return nil
}

// Criteria decodes the stored criteria of a campaign for its tooltip
func (s *CampaignFlowImpl) Criteria(ctx context.Context, uuid string) (*dto.CampaignCriteriaResponse, error) {
	campaign, err := s.byUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	pairs, err := criteria.Parse(campaign.Params)
	if err != nil {
		return nil, NewBusinessError("MALFORMED_CRITERIA", "Campaign criteria are malformed", fmt.Errorf("%w: %w", ErrMalformedCriteria, err))
	}
	return &dto.CampaignCriteriaResponse{
		UUID:     campaign.UUID.String(),
		Criteria: ToCriteriaDTO(pairs),
	}, nil
}

func (s *CampaignFlowImpl) byUUID(ctx context.Context, uuid string) (*models.Campaign, error) {
	if strings.TrimSpace(uuid) == "" {
		return nil, NewBusinessError("CAMPAIGN_UUID_REQUIRED", "Campaign UUID is required", ErrCampaignUUIDRequired)
	}
	if _, err := utils.ParseUUID(uuid); err != nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}
	campaign, err := s.campaignRepo.ByUUID(ctx, uuid)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}
	return campaign, nil
}

func checkCriteria(params *string) error {
	if _, err := criteria.Parse(params); err != nil {
		return NewBusinessError("MALFORMED_CRITERIA", "Campaign criteria are malformed", fmt.Errorf("%w: %w", ErrMalformedCriteria, err))
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return utils.ToPtr(t.UTC())
}
