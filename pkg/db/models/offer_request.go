package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
	"github.com/beatspace-ads/beatspace-backend/pkg/types"
)

// OfferRequest is the central mediation entity: a buyer asks for a price on
// an asset, the admin quotes, the buyer approves or pushes back. Buyer and
// asset names are denormalized at creation so the mediation list renders
// without joins even after the source rows change.
//
// QuoteCount is canonical here: integer, zero until the first quote, bumped
// atomically on every quote submission. Legacy clients that still send it as
// a string are tolerated at the JSON boundary, not in storage.
type OfferRequest struct {
	ID                  uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AssetID             uuid.UUID            `gorm:"column:asset_id;type:uuid;not null;index"`
	AssetName           string               `gorm:"column:asset_name;not null"`
	CampaignID          *uuid.UUID           `gorm:"column:campaign_id;type:uuid;index"`
	CampaignName        *string              `gorm:"column:campaign_name"`
	BuyerID             uuid.UUID            `gorm:"column:buyer_id;type:uuid;not null;index"`
	BuyerName           string               `gorm:"column:buyer_name;not null"`
	BuyerEmail          string               `gorm:"column:buyer_email;not null"`
	Status              enums.OfferStatus    `gorm:"column:status;type:offer_status;not null;default:'Pending'"`
	AdminQuotedPrice    *float64             `gorm:"column:admin_quoted_price"`
	QuoteCount          int                  `gorm:"column:quote_count;not null;default:0"`
	QuoteValidUntil     *time.Time           `gorm:"column:quote_valid_until"`
	CancelledByBuyer    *bool                `gorm:"column:cancelled_by_buyer"`
	RevisionRequested   *bool                `gorm:"column:revision_requested"`
	ContractDuration    string               `gorm:"column:contract_duration;not null"`
	AssetStartDate      *time.Time           `gorm:"column:asset_start_date"`
	AssetExpirationDate *time.Time           `gorm:"column:asset_expiration_date"`
	SpecialRequirements *string              `gorm:"column:special_requirements"`
	Notes               *string              `gorm:"column:notes"`
	AdminNotes          *string              `gorm:"column:admin_notes"`
	ServiceBundles      types.ServiceBundles `gorm:"column:service_bundles;type:jsonb"`
	AdditionalServices  types.StringList     `gorm:"column:additional_services;type:jsonb"`
	CreatedAt           time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
