package repository

import (
	"context"

	"github.com/RigelNana/edumarket/pkg/repository"
	"github.com/RigelNana/edumarket/services/auth-service/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthRepository 定义认证数据访问接口
type AuthRepository interface {
	repository.BaseRepository[models.Auth]
	// UpdatePassword 按 user_id 更新密码哈希
	UpdatePassword(ctx context.Context, userID uuid.UUID, newHashedPassword string) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Auth, error)
}

type AuthRepositoryImpl struct {
	*repository.BaseRepositoryImpl[models.Auth]
}

func NewAuthRepository(db *gorm.DB) AuthRepository {
	return &AuthRepositoryImpl{BaseRepositoryImpl: repository.NewBaseRepository[models.Auth](db)}
}

// UpdatePassword 仅更新 password 字段
func (r *AuthRepositoryImpl) UpdatePassword(ctx context.Context, userID uuid.UUID, newHashedPassword string) error {
	auth, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return r.UpdateColumn(ctx, auth.ID, "password", newHashedPassword)
}

func (r *AuthRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Auth, error) {
	return r.FindOne(ctx, "user_id = ?", userID)
}
