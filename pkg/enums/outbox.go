package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOfferRequest OutboxAggregateType = "offer_request"
	AggregateAsset        OutboxAggregateType = "asset"
	AggregateCampaign     OutboxAggregateType = "campaign"
	AggregateUser         OutboxAggregateType = "user"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOfferRequest,
	AggregateAsset,
	AggregateCampaign,
	AggregateUser,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres. The uppercase
// spellings are the wire names legacy dashboard clients already dispatch on,
// so they are kept verbatim rather than normalized to snake_case.
type OutboxEventType string

const (
	EventNewOfferRequest       OutboxEventType = "NEW_OFFER_REQUEST"
	EventQuoteSubmitted        OutboxEventType = "QUOTE_SUBMITTED"
	EventOfferApproved         OutboxEventType = "OFFER_APPROVED"
	EventOfferRejected         OutboxEventType = "OFFER_REJECTED"
	EventRevisionRequested     OutboxEventType = "REVISION_REQUESTED"
	EventOfferCancelled        OutboxEventType = "OFFER_CANCELLED"
	EventOfferStatusChanged    OutboxEventType = "OFFER_STATUS_CHANGED"
	EventAssetStatusChanged    OutboxEventType = "ASSET_STATUS_CHANGED"
	EventCampaignStatusChanged OutboxEventType = "CAMPAIGN_STATUS_CHANGED"
	EventMonitoringSubmitted   OutboxEventType = "MONITORING_SUBMITTED"
)

var validOutboxEventTypes = []OutboxEventType{
	EventNewOfferRequest,
	EventQuoteSubmitted,
	EventOfferApproved,
	EventOfferRejected,
	EventRevisionRequested,
	EventOfferCancelled,
	EventOfferStatusChanged,
	EventAssetStatusChanged,
	EventCampaignStatusChanged,
	EventMonitoringSubmitted,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
