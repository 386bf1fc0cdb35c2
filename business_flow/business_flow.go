package businessflow

import (
	"time"

	"github.com/amirphl/orochi-admin/app/criteria"
	"github.com/amirphl/orochi-admin/app/dto"
	"github.com/amirphl/orochi-admin/models"
	"github.com/amirphl/orochi-admin/utils"
)

// ClientMetadata identifies the client behind a request for audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToAdminDTOModel converts an admin model to its API shape
func ToAdminDTOModel(admin models.Admin) dto.AdminDTO {
	out := dto.AdminDTO{
		ID:        admin.ID,
		UUID:      admin.UUID.String(),
		Username:  admin.Username,
		IsActive:  admin.IsActive,
		CreatedAt: admin.CreatedAt.Format(time.RFC3339),
	}
	if admin.LastLoginAt != nil {
		out.LastLoginAt = utils.ToPtr(admin.LastLoginAt.Format(time.RFC3339))
	}
	return out
}

// ToAdminSessionDTO wraps a freshly issued token pair
func ToAdminSessionDTO(accessToken, refreshToken string, accessTTL time.Duration) dto.AdminSessionDTO {
	return dto.AdminSessionDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(accessTTL.Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    utils.UTCNow().Format(time.RFC3339),
	}
}

// ToCampaignDTO converts a campaign model to a board record
func ToCampaignDTO(c models.Campaign) dto.CampaignDTO {
	out := dto.CampaignDTO{
		ID:                c.ID,
		UUID:              c.UUID.String(),
		Name:              c.Name,
		Description:       c.Description,
		Status:            c.Status.String(),
		StatusDisplayName: c.GetStatusDisplayName(),
		StatusColor:       c.GetStatusColor(),
		Favourite:         c.Favourite,
		QueryTemplateID:   c.QueryTemplateID,
		Params:            c.Params,
		CreatedDate:       c.CreatedAt.Format(time.RFC3339),
	}
	if c.StartDate != nil {
		out.StartDate = utils.ToPtr(c.StartDate.Format(time.RFC3339))
	}
	if c.UpdatedAt != nil {
		out.UpdatedAt = utils.ToPtr(c.UpdatedAt.Format(time.RFC3339))
	}
	return out
}

// ToCriteriaDTO converts decoded criteria pairs
func ToCriteriaDTO(pairs []criteria.Pair) []dto.CriteriaPairDTO {
	out := make([]dto.CriteriaPairDTO, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, dto.CriteriaPairDTO{Key: p.Key, Value: p.Value})
	}
	return out
}

// ToQueryTemplateDTO converts a template; params is the parsed schema (nil to omit)
func ToQueryTemplateDTO(t models.QueryTemplate, params []models.ParameterDefinition) dto.QueryTemplateDTO {
	tags := []string(t.Tags)
	if tags == nil {
		tags = []string{}
	}
	return dto.QueryTemplateDTO{
		ID:          t.ID,
		UUID:        t.UUID.String(),
		Name:        t.Name,
		Description: t.Description,
		Tags:        tags,
		Params:      params,
	}
}
