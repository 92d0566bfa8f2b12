package repository

import (
	"context"

	"github.com/RigelNana/edumarket/pkg/repository"
	"github.com/RigelNana/edumarket/services/resource-service/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Counter names a monotonically increasing column of resources.
type Counter string

const (
	CounterDownloads Counter = "downloads"
	CounterViews     Counter = "views"
)

// ResourceFilter scopes a select. Zero values do not filter.
type ResourceFilter struct {
	UploadedBy    string
	Status        string
	ExcludeStatus string
}

type ResourceRepository interface {
	repository.BaseRepository[models.Resource]
	// ListResources returns matching resources newest first.
	ListResources(ctx context.Context, filter ResourceFilter) ([]*models.Resource, error)
	IncrementCounter(ctx context.Context, id uuid.UUID, counter Counter) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type ResourceRepositoryImpl struct {
	*repository.BaseRepositoryImpl[models.Resource]
}

func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &ResourceRepositoryImpl{
		BaseRepositoryImpl: repository.NewBaseRepository[models.Resource](db),
	}
}

func (r *ResourceRepositoryImpl) ListResources(ctx context.Context, filter ResourceFilter) ([]*models.Resource, error) {
	var resources []*models.Resource
	query := r.DB.WithContext(ctx).Model(&models.Resource{})
	if filter.UploadedBy != "" {
		query = query.Where("uploaded_by = ?", filter.UploadedBy)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ExcludeStatus != "" {
		query = query.Where("status <> ?", filter.ExcludeStatus)
	}
	err := query.Order("upload_date DESC").Find(&resources).Error
	if err != nil {
		return nil, err
	}
	return resources, nil
}

// IncrementCounter adds exactly one in a single UPDATE so concurrent callers never lose increments.
func (r *ResourceRepositoryImpl) IncrementCounter(ctx context.Context, id uuid.UUID, counter Counter) error {
	column := string(counter)
	return r.UpdateColumn(ctx, id, column, gorm.Expr(column+" + ?", 1))
}

func (r *ResourceRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.UpdateColumn(ctx, id, "status", status)
}

func (r *ResourceRepositoryImpl) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Resource{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
