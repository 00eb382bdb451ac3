package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
)

// OfferRequestCreatedEvent signals a buyer asked for a price on an asset.
type OfferRequestCreatedEvent struct {
	OfferID    uuid.UUID  `json:"offer_id"`
	AssetID    uuid.UUID  `json:"asset_id"`
	AssetName  string     `json:"asset_name"`
	BuyerID    uuid.UUID  `json:"buyer_id"`
	BuyerName  string     `json:"buyer_name"`
	CampaignID *uuid.UUID `json:"campaign_id,omitempty"`
}

// QuoteSubmittedEvent is emitted each time the admin prices an offer.
type QuoteSubmittedEvent struct {
	OfferID     uuid.UUID  `json:"offer_id"`
	BuyerID     uuid.UUID  `json:"buyer_id"`
	QuotedPrice float64    `json:"quoted_price"`
	QuoteCount  int        `json:"quote_count"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
}

// OfferDecisionEvent covers buyer approval and admin rejection.
type OfferDecisionEvent struct {
	OfferID   uuid.UUID         `json:"offer_id"`
	BuyerID   uuid.UUID         `json:"buyer_id"`
	Status    enums.OfferStatus `json:"status"`
	Reason    string            `json:"reason,omitempty"`
	DecidedAt time.Time         `json:"decided_at"`
}

// RevisionRequestedEvent is emitted when the buyer pushes a quote back.
type RevisionRequestedEvent struct {
	OfferID uuid.UUID `json:"offer_id"`
	BuyerID uuid.UUID `json:"buyer_id"`
	Notes   string    `json:"notes,omitempty"`
}

// OfferCancelledEvent records a buyer withdrawing a pending request.
type OfferCancelledEvent struct {
	OfferID     uuid.UUID `json:"offer_id"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// OfferStatusChangedEvent covers direct admin status overrides.
type OfferStatusChangedEvent struct {
	OfferID    uuid.UUID         `json:"offer_id"`
	BuyerID    uuid.UUID         `json:"buyer_id"`
	FromStatus enums.OfferStatus `json:"from_status"`
	ToStatus   enums.OfferStatus `json:"to_status"`
}

// AssetStatusChangedEvent mirrors seller/admin asset lifecycle updates.
type AssetStatusChangedEvent struct {
	AssetID  uuid.UUID         `json:"asset_id"`
	SellerID uuid.UUID         `json:"seller_id"`
	Status   enums.AssetStatus `json:"status"`
}

// CampaignStatusChangedEvent follows a campaign through its lifecycle.
type CampaignStatusChangedEvent struct {
	CampaignID uuid.UUID            `json:"campaign_id"`
	BuyerID    uuid.UUID            `json:"buyer_id"`
	Status     enums.CampaignStatus `json:"status"`
}

// MonitoringSubmittedEvent is emitted when an inspection report lands.
type MonitoringSubmittedEvent struct {
	ReportID    uuid.UUID `json:"report_id"`
	AssetID     uuid.UUID `json:"asset_id"`
	Condition   int       `json:"condition"`
	InspectedAt time.Time `json:"inspected_at"`
}
