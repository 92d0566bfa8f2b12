package repository

import (
	"context"

	"github.com/RigelNana/edumarket/pkg/repository"
	"github.com/RigelNana/edumarket/services/resource-service/models"
	"gorm.io/gorm"
)

type ActivityRepository interface {
	repository.BaseRepository[models.Activity]
	ListByOwner(ctx context.Context, owner string, limit int) ([]*models.Activity, error)
}

type ActivityRepositoryImpl struct {
	*repository.BaseRepositoryImpl[models.Activity]
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &ActivityRepositoryImpl{
		BaseRepositoryImpl: repository.NewBaseRepository[models.Activity](db),
	}
}

func (r *ActivityRepositoryImpl) ListByOwner(ctx context.Context, owner string, limit int) ([]*models.Activity, error) {
	var activities []*models.Activity
	err := r.DB.WithContext(ctx).
		Where("owner = ?", owner).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}
