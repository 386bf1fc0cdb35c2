package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/orochi-admin/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignStatus represents the status of a campaign
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusReady     CampaignStatus = "ready"
	CampaignStatusRunning   CampaignStatus = "running"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusFailed    CampaignStatus = "failed"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

// String returns the string representation of the status
func (s CampaignStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusReady, CampaignStatusRunning,
		CampaignStatusCompleted, CampaignStatusFailed, CampaignStatusCancelled:
		return true
	default:
		return false
	}
}

// IsPending reports whether the campaign has not been started yet (draft or ready)
func (s CampaignStatus) IsPending() bool {
	return s == CampaignStatusDraft || s == CampaignStatusReady
}

// Scan implements the sql.Scanner interface for CampaignStatus
func (s *CampaignStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = CampaignStatus(v)
	case []byte:
		*s = CampaignStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CampaignStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignStatus
func (s CampaignStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid CampaignStatus: %s", s)
	}
	return string(s), nil
}

// Campaign represents a campaign record shown on the board
type Campaign struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UUID            uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`
	QueryTemplateID *uint          `gorm:"index:idx_campaigns_query_template_id" json:"query_template_id,omitempty"`
	Name            string         `gorm:"size:255;not null;index:idx_campaigns_name" json:"name"`
	Description     string         `gorm:"type:text" json:"description"`
	Status          CampaignStatus `gorm:"size:32;not null;default:'draft';index:idx_campaigns_status" json:"status"`
	Favourite       bool           `gorm:"not null;default:false;index:idx_campaigns_favourite" json:"favourite"`
	Params          *string        `gorm:"type:text" json:"params,omitempty"`
	StartDate       *time.Time     `gorm:"index:idx_campaigns_start_date" json:"start_date,omitempty"`
	CreatedAt       time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_date"`
	UpdatedAt       *time.Time     `json:"updated_at,omitempty"`

	QueryTemplate *QueryTemplate `gorm:"foreignKey:QueryTemplateID;references:ID" json:"query_template,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CampaignStatusDraft
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = utils.UTCNowPtr()
	return nil
}

// IsEditable checks if the campaign details can still be edited
func (c *Campaign) IsEditable() bool {
	return c.Status.IsPending()
}

// SortDate is the date used to order the campaign on the board: completed
// campaigns by start date (falling back to creation), everything else by creation.
func (c *Campaign) SortDate() time.Time {
	if c.Status == CampaignStatusCompleted && c.StartDate != nil {
		return *c.StartDate
	}
	return c.CreatedAt
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID              *uint           `json:"id,omitempty"`
	UUID            *uuid.UUID      `json:"uuid,omitempty"`
	QueryTemplateID *uint           `json:"query_template_id,omitempty"`
	Status          *CampaignStatus `json:"status,omitempty"`
	NameContains    *string         `json:"name_contains,omitempty"`
	Favourite       *bool           `json:"favourite,omitempty"`
	CreatedAfter    *time.Time      `json:"created_after,omitempty"`
	CreatedBefore   *time.Time      `json:"created_before,omitempty"`
}

// GetStatusDisplayName returns a human-readable status name
func (c *Campaign) GetStatusDisplayName() string {
	switch c.Status {
	case CampaignStatusDraft:
		return "Draft"
	case CampaignStatusReady:
		return "Ready"
	case CampaignStatusRunning:
		return "Running"
	case CampaignStatusCompleted:
		return "Completed"
	case CampaignStatusFailed:
		return "Failed"
	case CampaignStatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// GetStatusColor returns a color code for the status (for UI purposes)
func (c *Campaign) GetStatusColor() string {
	switch c.Status {
	case CampaignStatusDraft:
		return "#6c757d" // gray
	case CampaignStatusReady:
		return "#007bff" // blue
	case CampaignStatusRunning:
		return "#ffc107" // yellow
	case CampaignStatusCompleted:
		return "#28a745" // green
	case CampaignStatusFailed, CampaignStatusCancelled:
		return "#dc3545" // red
	default:
		return "#6c757d" // gray
	}
}
