package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no row matches the given id.
var ErrNotFound = errors.New("record not found")

// Base is embedded by every uuid-keyed model.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

type BaseRepository[T any] interface {
	Create(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*T, error)
	Count(ctx context.Context) (int64, error)
}

type BaseRepositoryImpl[T any] struct {
	DB *gorm.DB
}

func NewBaseRepository[T any](db *gorm.DB) *BaseRepositoryImpl[T] {
	return &BaseRepositoryImpl[T]{
		DB: db,
	}
}

func (r *BaseRepositoryImpl[T]) Create(ctx context.Context, entity *T) error {
	return r.DB.WithContext(ctx).Create(entity).Error
}

func (r *BaseRepositoryImpl[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	return r.FindOne(ctx, "id = ?", id)
}

// FindOne returns the first row matching query, or ErrNotFound.
func (r *BaseRepositoryImpl[T]) FindOne(ctx context.Context, query string, args ...any) (*T, error) {
	var entity T
	err := r.DB.WithContext(ctx).Where(query, args...).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *BaseRepositoryImpl[T]) Update(ctx context.Context, entity *T) error {
	return r.DB.WithContext(ctx).Save(entity).Error
}

func (r *BaseRepositoryImpl[T]) Delete(ctx context.Context, id uuid.UUID) error {
	var entity T
	return affected(r.DB.WithContext(ctx).Delete(&entity, "id = ?", id))
}

// UpdateColumn sets one column on the row with the given id. value may be a
// gorm.Expr. Updating a missing row returns ErrNotFound.
func (r *BaseRepositoryImpl[T]) UpdateColumn(ctx context.Context, id uuid.UUID, column string, value any) error {
	var entity T
	return affected(r.DB.WithContext(ctx).Model(&entity).Where("id = ?", id).UpdateColumn(column, value))
}

func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BaseRepositoryImpl[T]) List(ctx context.Context, limit, offset int) ([]*T, error) {
	var entities []*T
	err := r.DB.WithContext(ctx).Limit(limit).Offset(offset).Find(&entities).Error
	return entities, err
}

func (r *BaseRepositoryImpl[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	var entity T
	err := r.DB.WithContext(ctx).Model(&entity).Count(&count).Error
	return count, err
}
