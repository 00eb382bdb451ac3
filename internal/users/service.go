package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beatspace-ads/beatspace-backend/pkg/config"
	"github.com/beatspace-ads/beatspace-backend/pkg/db"
	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
	pkgerrors "github.com/beatspace-ads/beatspace-backend/pkg/errors"
	"github.com/beatspace-ads/beatspace-backend/pkg/security"
)

// RegisterInput is the public signup payload. New accounts land in pending
// until an admin approves them.
type RegisterInput struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8"`
	CompanyName string  `json:"company_name" validate:"required"`
	ContactName string  `json:"contact_name" validate:"required"`
	Phone       *string `json:"phone,omitempty"`
	Role        string  `json:"role" validate:"required,oneof=buyer seller"`
}

// UpdateUserInput carries optional admin mutations.
type UpdateUserInput struct {
	CompanyName *string `json:"company_name,omitempty"`
	ContactName *string `json:"contact_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

// SetStatusInput is the admin account-gating payload.
type SetStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// Service exposes registration plus admin account management.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
	List(ctx context.Context, params ListParams) ([]models.User, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdateUserInput) (*models.User, error)
	SetStatus(ctx context.Context, userID uuid.UUID, input SetStatusInput) (*models.User, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo        Repository
	passwordCfg config.PasswordConfig
}

// NewService wires the user service.
func NewService(repo Repository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, errors.New("users repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	role, err := enums.ParseUserRole(input.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
	}
	// Admin accounts are provisioned out of band, never through signup.
	if role == enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin accounts cannot self-register")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		CompanyName:  strings.TrimSpace(input.CompanyName),
		ContactName:  strings.TrimSpace(input.ContactName),
		Phone:        input.Phone,
		Role:         role,
		Status:       enums.UserStatusPending,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.findUser(ctx, userID)
}

func (s *service) List(ctx context.Context, params ListParams) ([]models.User, error) {
	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return rows, nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, input UpdateUserInput) (*models.User, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.CompanyName != nil {
		trimmed := strings.TrimSpace(*input.CompanyName)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "company_name cannot be empty")
		}
		user.CompanyName = trimmed
	}
	if input.ContactName != nil {
		user.ContactName = strings.TrimSpace(*input.ContactName)
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return user, nil
}

func (s *service) SetStatus(ctx context.Context, userID uuid.UUID, input SetStatusInput) (*models.User, error) {
	target, err := enums.ParseUserStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Status = target
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user status")
	}
	return user, nil
}

func (s *service) Delete(ctx context.Context, userID uuid.UUID) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}

func (s *service) findUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	return user, nil
}
