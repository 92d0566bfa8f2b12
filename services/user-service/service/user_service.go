package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	baserepo "github.com/RigelNana/edumarket/pkg/repository"
	"github.com/RigelNana/edumarket/services/user-service/models"
	"github.com/RigelNana/edumarket/services/user-service/repository"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = baserepo.ErrNotFound
	ErrEmailTaken    = errors.New("email already registered")
	ErrInvalidStatus = errors.New("status must be active or suspended")
	ErrInvalidRole   = errors.New("role must be user or admin")
)

type UserService interface {
	Create(ctx context.Context, name, email, role string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.User, error)
}

type UserServiceImpl struct{ repo repository.UserRepository }

func NewUserService(r repository.UserRepository) UserService { return &UserServiceImpl{repo: r} }

// NormalizeEmail is applied to every email before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserServiceImpl) Create(ctx context.Context, name, email, role string) (*models.User, error) {
	email = NormalizeEmail(email)
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, ErrInvalidRole
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	u := &models.User{Name: strings.TrimSpace(name), Email: email, Role: role, Status: models.StatusActive}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserServiceImpl) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

func (s *UserServiceImpl) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListAll(ctx)
}

func (s *UserServiceImpl) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.User, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
