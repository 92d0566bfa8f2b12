package repository

import (
	"context"

	"github.com/RigelNana/edumarket/pkg/repository"
	"github.com/RigelNana/edumarket/services/user-service/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	repository.BaseRepository[models.User]
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	// ListAll returns every account, oldest first.
	ListAll(ctx context.Context) ([]*models.User, error)
}

type UserRepositoryImpl struct {
	*repository.BaseRepositoryImpl[models.User]
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{
		BaseRepositoryImpl: repository.NewBaseRepository[models.User](db),
	}
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.FindOne(ctx, "email = ?", email)
}

func (r *UserRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.UpdateColumn(ctx, id, "status", status)
}

func (r *UserRepositoryImpl) ListAll(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&users).Error
	return users, err
}
