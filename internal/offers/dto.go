package offers

import (
	"time"

	"github.com/google/uuid"

	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
	"github.com/beatspace-ads/beatspace-backend/pkg/types"
)

// OfferView is an OfferRequest enriched with fetch-time display fields. The
// enriched fields are never persisted; they are recomputed on every read from
// the current asset row.
type OfferView struct {
	models.OfferRequest

	BuyerStatus enums.BuyerStatus `json:"buyer_status"`
	AdminStatus string            `json:"admin_status"`

	AssetPrice       float64          `json:"asset_price"`
	AssetSellerName  string           `json:"asset_seller_name"`
	AssetPricingFull types.PricingMap `json:"asset_pricing_full,omitempty"`
}

// BuyerRef is the identity half of a mediation group.
type BuyerRef struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BuyerGroup bundles one buyer's offers on the current mediation page.
type BuyerGroup struct {
	Buyer  BuyerRef    `json:"buyer"`
	Offers []OfferView `json:"offers"`
}

// MediationParams select and page the admin mediation view.
type MediationParams struct {
	Search      string
	BuyerStatus string // "all" or empty disables the filter
	Page        int
}

// MediationResult is the grouped, paginated admin view.
type MediationResult struct {
	Groups     []BuyerGroup `json:"groups"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	ActiveRows int          `json:"active_rows"`
}

// CreateRequestInput is the buyer-side payload for a new offer request.
type CreateRequestInput struct {
	AssetID             uuid.UUID            `json:"asset_id" validate:"required"`
	CampaignID          *uuid.UUID           `json:"campaign_id,omitempty"`
	ContractDuration    string               `json:"contract_duration" validate:"required"`
	AssetStartDate      *time.Time           `json:"asset_start_date,omitempty"`
	AssetExpirationDate *time.Time           `json:"asset_expiration_date,omitempty"`
	SpecialRequirements *string              `json:"special_requirements,omitempty"`
	Notes               *string              `json:"notes,omitempty"`
	ServiceBundles      types.ServiceBundles `json:"service_bundles,omitempty"`
	AdditionalServices  types.StringList     `json:"additional_services,omitempty"`
}

// SubmitQuoteInput is the admin quote payload. QuoteCount tolerates legacy
// clients that still send the counter as a string; it is informational only,
// the server increments the canonical column itself.
type SubmitQuoteInput struct {
	QuotedPrice float64             `json:"quoted_price" validate:"required,gt=0"`
	AdminNotes  *string             `json:"admin_notes,omitempty"`
	ValidUntil  *time.Time          `json:"valid_until,omitempty"`
	QuoteCount  types.FlexibleCount `json:"quote_count,omitempty"`
}

// RevisionInput carries the buyer's pushback notes.
type RevisionInput struct {
	Notes *string `json:"notes,omitempty"`
}

// SetStatusInput is the admin direct-status override payload.
type SetStatusInput struct {
	Status string `json:"status" validate:"required"`
}
