package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
)

// LoginRequest is the credential payload for all roles.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest rotates a session. The access token may be expired; the
// refresh token must match the stored session exactly.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserSummary is the account shape returned to clients; the password hash
// never leaves the service layer.
type UserSummary struct {
	ID          uuid.UUID        `json:"id"`
	Email       string           `json:"email"`
	CompanyName string           `json:"company_name"`
	ContactName string           `json:"contact_name"`
	Role        enums.UserRole   `json:"role"`
	Status      enums.UserStatus `json:"status"`
	LastLoginAt *time.Time       `json:"last_login_at,omitempty"`
}

// TokenPair is an access token plus the refresh token guarding its session.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse bundles the minted tokens with the account summary.
type LoginResponse struct {
	TokenPair
	User UserSummary `json:"user"`
}

// FromModel strips a stored account down to its client-facing shape.
func FromModel(user *models.User) UserSummary {
	return UserSummary{
		ID:          user.ID,
		Email:       user.Email,
		CompanyName: user.CompanyName,
		ContactName: user.ContactName,
		Role:        user.Role,
		Status:      user.Status,
		LastLoginAt: user.LastLoginAt,
	}
}
