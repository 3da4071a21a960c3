package service

import (
	"context"
	"errors"
	"strings"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/arifsuz/pre-shipment-system/internal/pse/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService manages operator accounts.
type UserService struct {
	repo   *repository.UserRepository
	logger *zap.Logger
}

func NewUserService(repo *repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// CreateUserRequest creates an account.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Nama     string `json:"nama" binding:"required"`
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

// UpdateUserRequest updates the given fields only.
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Nama     *string `json:"nama"`
	Username *string `json:"username" binding:"omitempty,min=3"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

func validRole(role string) bool {
	return role == entity.RoleAdmin || role == entity.RoleViewer
}

func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	return s.repo.FindAll(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user", id)
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*entity.User, error) {
	role := req.Role
	if role == "" {
		role = entity.RoleViewer
	}
	if !validRole(role) {
		return nil, NewValidationError("Validation failed", "role must be ADMIN or VIEWER")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	exists, err := s.repo.ExistsByEmailOrUsername(ctx, email, username, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewValidationError("User already exists", "email or username is already taken")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		ID:       uuid.New().String(),
		Email:    email,
		Nama:     strings.TrimSpace(req.Nama),
		Username: username,
		Password: hash,
		Role:     role,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		s.logger.Error("create user failed", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, req *UpdateUserRequest) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user", id)
	}

	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil || req.Username != nil {
		exists, err := s.repo.ExistsByEmailOrUsername(ctx, user.Email, user.Username, user.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, NewValidationError("User already exists", "email or username is already taken")
		}
	}
	if req.Nama != nil {
		user.Nama = strings.TrimSpace(*req.Nama)
	}
	if req.Role != nil {
		if !validRole(*req.Role) {
			return nil, NewValidationError("Validation failed", "role must be ADMIN or VIEWER")
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error("update user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// Delete removes an account. Users cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, id, currentUserID string) error {
	if id == currentUserID {
		return NewValidationError("Cannot delete your own account")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return translate(err, "user", id)
	}
	return s.repo.Delete(ctx, id)
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// EnsureAdmin creates the administrator account, or resets its password and
// role when it already exists.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, nama, password string) (*entity.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByLogin(ctx, username)
	switch {
	case err == nil:
		user.Password = hash
		user.Role = entity.RoleAdmin
		user.IsActive = true
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	case errors.Is(err, repository.ErrNotFound):
		user = &entity.User{
			ID:       uuid.New().String(),
			Email:    strings.ToLower(email),
			Nama:     nama,
			Username: username,
			Password: hash,
			Role:     entity.RoleAdmin,
			IsActive: true,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("admin user created", zap.String("username", username))
		return user, nil
	default:
		return nil, err
	}
}
