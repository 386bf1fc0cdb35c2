package models

import (
	"time"

	"github.com/amirphl/orochi-admin/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// QueryTemplate stores a parameter schema campaigns are built from.
// Params holds the JSON array of ParameterDefinition exactly as served to clients.
type QueryTemplate struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_query_templates_uuid" json:"uuid"`
	Name        string         `gorm:"size:255;not null;uniqueIndex:uk_query_templates_name" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Params      string         `gorm:"type:text;not null;default:'[]'" json:"params"`
	Tags        pq.StringArray `gorm:"type:text[];index:idx_query_templates_tags_gin,using:gin" json:"tags"`
	IsActive    *bool          `gorm:"default:true;index:idx_query_templates_is_active" json:"is_active"`
	CreatedAt   time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (QueryTemplate) TableName() string {
	return "query_templates"
}

// BeforeCreate is called before creating a new record
func (q *QueryTemplate) BeforeCreate(tx *gorm.DB) error {
	if q.UUID == uuid.Nil {
		q.UUID = uuid.New()
	}
	if q.Params == "" {
		q.Params = "[]"
	}
	if q.IsActive == nil {
		q.IsActive = utils.ToPtr(true)
	}
	return nil
}

// QueryTemplateFilter represents filter criteria for query template queries
type QueryTemplateFilter struct {
	ID       *uint
	UUID     *uuid.UUID
	Name     *string
	Tag      *string
	IsActive *bool
}
