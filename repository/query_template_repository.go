package repository

import (
	"context"
	"errors"

	"github.com/amirphl/orochi-admin/models"
	"github.com/amirphl/orochi-admin/utils"
	"gorm.io/gorm"
)

// QueryTemplateRepositoryImpl implements QueryTemplateRepository
type QueryTemplateRepositoryImpl struct {
	*BaseRepository[models.QueryTemplate, models.QueryTemplateFilter]
}

// NewQueryTemplateRepository creates a new query template repository
func NewQueryTemplateRepository(db *gorm.DB) QueryTemplateRepository {
	return &QueryTemplateRepositoryImpl{
		BaseRepository: NewBaseRepository[models.QueryTemplate, models.QueryTemplateFilter](db),
	}
}

// ByUUID retrieves a template by UUID
func (r *QueryTemplateRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.QueryTemplate, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}
	return r.first(ctx, models.QueryTemplateFilter{UUID: &parsedUUID})
}

// ByName retrieves a template by its unique name
func (r *QueryTemplateRepositoryImpl) ByName(ctx context.Context, name string) (*models.QueryTemplate, error) {
	return r.first(ctx, models.QueryTemplateFilter{Name: &name})
}

func (r *QueryTemplateRepositoryImpl) first(ctx context.Context, filter models.QueryTemplateFilter) (*models.QueryTemplate, error) {
	db := r.getDB(ctx)

	var template models.QueryTemplate
	err := r.applyFilter(db.Model(&models.QueryTemplate{}), filter).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// Update saves every column of the template
func (r *QueryTemplateRepositoryImpl) Update(ctx context.Context, template *models.QueryTemplate) error {
	db := r.getDB(ctx)
	template.UpdatedAt = utils.UTCNow()
	return db.Save(template).Error
}

// ByFilter retrieves templates based on filter criteria
func (r *QueryTemplateRepositoryImpl) ByFilter(ctx context.Context, filter models.QueryTemplateFilter, orderBy string, limit, offset int) ([]*models.QueryTemplate, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.QueryTemplate{}), filter)

	if orderBy == "" {
		orderBy = "name ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var templates []*models.QueryTemplate
	if err := query.Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Count returns the number of templates matching the filter
func (r *QueryTemplateRepositoryImpl) Count(ctx context.Context, filter models.QueryTemplateFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	if err := r.applyFilter(db.Model(&models.QueryTemplate{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any template matching the filter exists
func (r *QueryTemplateRepositoryImpl) Exists(ctx context.Context, filter models.QueryTemplateFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *QueryTemplateRepositoryImpl) applyFilter(query *gorm.DB, filter models.QueryTemplateFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.Tag != nil {
		query = query.Where("? = ANY(tags)", *filter.Tag)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}
