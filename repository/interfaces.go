package repository

import (
	"context"

	"github.com/amirphl/orochi-admin/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AdminRepository defines operations for admins
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Admin, error)
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, id uint) error
}

// CampaignRepository defines operations for board campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	SetFavourite(ctx context.Context, id uint, favourite bool) error
	Delete(ctx context.Context, id uint) error
}

// QueryTemplateRepository defines operations for query templates
type QueryTemplateRepository interface {
	Repository[models.QueryTemplate, models.QueryTemplateFilter]
	ByUUID(ctx context.Context, uuid string) (*models.QueryTemplate, error)
	ByName(ctx context.Context, name string) (*models.QueryTemplate, error)
	Update(ctx context.Context, template *models.QueryTemplate) error
}
