package assets

import (
	"time"

	"github.com/google/uuid"

	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/types"
)

// CreateAssetInput is the seller-side payload for listing a new placement.
type CreateAssetInput struct {
	Name           string           `json:"name" validate:"required"`
	Type           string           `json:"type" validate:"required"`
	Address        string           `json:"address" validate:"required"`
	Dimensions     *string          `json:"dimensions,omitempty"`
	Description    *string          `json:"description,omitempty"`
	Pricing        types.PricingMap `json:"pricing" validate:"required,min=1"`
	Photos         types.StringList `json:"photos,omitempty"`
	Traffic        *string          `json:"traffic,omitempty"`
	VisibilityNote *string          `json:"visibility_note,omitempty"`
}

// UpdateAssetInput carries optional mutations; nil means keep the stored value.
type UpdateAssetInput struct {
	Name           *string           `json:"name,omitempty"`
	Type           *string           `json:"type,omitempty"`
	Address        *string           `json:"address,omitempty"`
	Dimensions     *string           `json:"dimensions,omitempty"`
	Description    *string           `json:"description,omitempty"`
	Pricing        *types.PricingMap `json:"pricing,omitempty"`
	Photos         *types.StringList `json:"photos,omitempty"`
	Traffic        *string           `json:"traffic,omitempty"`
	VisibilityNote *string           `json:"visibility_note,omitempty"`
}

// CreateAssetResult pairs the stored row with a non-fatal geocoding warning.
// The warning is surfaced so the seller can fix the address, but it never
// blocks the listing itself.
type CreateAssetResult struct {
	Asset           *models.Asset `json:"asset"`
	GeocodeWarning  string        `json:"geocode_warning,omitempty"`
}

// SetStatusInput is the admin lifecycle-transition payload.
type SetStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ListParams filter the admin and public asset listings.
type ListParams struct {
	Search   string
	District string
	Type     string
}

// MonitoringInput is an inspection report submission.
type MonitoringInput struct {
	Condition   int              `json:"condition" validate:"required,min=1,max=5"`
	Notes       *string          `json:"notes,omitempty"`
	Photos      types.StringList `json:"photos,omitempty"`
	InspectedAt *time.Time       `json:"inspected_at,omitempty"`
}

// MonitoringQuery selects reports for one asset.
type MonitoringQuery struct {
	AssetID uuid.UUID
}
