package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/RigelNana/edumarket/pkg/metrics"
	baserepo "github.com/RigelNana/edumarket/pkg/repository"
	"github.com/RigelNana/edumarket/pkg/session"
	"github.com/RigelNana/edumarket/services/auth-service/models"
	"github.com/RigelNana/edumarket/services/auth-service/repository"
	"github.com/RigelNana/edumarket/services/auth-service/utils"
	usermodels "github.com/RigelNana/edumarket/services/user-service/models"
	userservice "github.com/RigelNana/edumarket/services/user-service/service"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("account suspended")
	ErrInvalidInput       = errors.New("invalid input")
	// ErrSessionExpired means the token is well formed but its session is gone.
	ErrSessionExpired = errors.New("session expired or logged out")
)

type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Session   session.Session `json:"-"`
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*usermodels.User, error)
	Login(ctx context.Context, email, password string, kind session.Kind) (*LoginResult, error)
	Authenticate(ctx context.Context, token string) (session.Session, error)
	Logout(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	// EnsureAdmin creates the admin account if no account uses email yet.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type Options struct {
	BcryptCost int
}

type AuthServiceImpl struct {
	repo     repository.AuthRepository
	users    userservice.UserService
	tokens   *utils.TokenManager
	sessions session.Store
	cost     int
	log      *logrus.Logger
}

func NewAuthService(repo repository.AuthRepository, users userservice.UserService, tokens *utils.TokenManager, sessions session.Store, opts Options, log *logrus.Logger) AuthService {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthServiceImpl{
		repo:     repo,
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		cost:     cost,
		log:      log,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) (*usermodels.User, error) {
	return s.register(ctx, name, email, password, usermodels.RoleUser)
}

func (s *AuthServiceImpl) register(ctx context.Context, name, email, password, role string) (*usermodels.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, name, email, role)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &models.Auth{UserID: u.ID, Password: string(hash)}); err != nil {
		return nil, fmt.Errorf("failed to store credentials: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": role}).Info("account registered")
	return u, nil
}

func validateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	return nil
}

// Login checks the password and opens a session of the requested kind.
// Admin sessions require the admin role.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string, kind session.Kind) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userservice.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	authRec, err := s.repo.GetByUserID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, baserepo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(authRec.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if kind == session.KindAdmin && u.Role != usermodels.RoleAdmin {
		return nil, ErrInvalidCredentials
	}
	if u.Status == usermodels.StatusSuspended {
		return nil, ErrAccountSuspended
	}

	var sess session.Session
	switch kind {
	case session.KindAdmin:
		sess = session.Admin{ID: u.ID, Email: u.Email}
	default:
		kind = session.KindUser
		sess = session.User{ID: u.ID, Email: u.Email, Name: u.Name}
	}

	token, claims, err := s.tokens.Generate(u.ID.String(), u.Email, string(kind))
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Set(ctx, session.Key(kind, claims.ID), sess, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	metrics.SessionsTotal.WithLabelValues("opened").Inc()

	return &LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Session:   sess,
	}, nil
}

func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (session.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, session.Key(session.Kind(claims.Kind), claims.ID))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	return sess, nil
}

// Logout removes the session behind token. Unknown sessions are not an error.
func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}
	removed, err := s.sessions.Remove(ctx, session.Key(session.Kind(claims.Kind), claims.ID))
	if err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	if removed {
		metrics.SessionsTotal.WithLabelValues("closed").Inc()
	}
	return nil
}

func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	authRec, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, baserepo.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(authRec.Password), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, string(hash))
}

func (s *AuthServiceImpl) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, userservice.ErrNotFound) {
		return err
	}
	_, err := s.register(ctx, "Administrator", email, password, usermodels.RoleAdmin)
	return err
}
