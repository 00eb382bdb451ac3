package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
	"github.com/beatspace-ads/beatspace-backend/pkg/outbox"
)

type bellWriter interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateForRole(ctx context.Context, role enums.UserRole, template *models.Notification) error
}

type broadcaster interface {
	Broadcast(frame Frame)
	BroadcastTo(userID uuid.UUID, frame Frame)
	BroadcastToRole(role enums.UserRole, frame Frame)
}

type dirtyMarker interface {
	MarkDirty()
}

// descriptor fixes the user-facing rendering of one recognized event type.
// NotifyAdmins marks buyer-originated events the mediation dashboard must see
// in addition to the buyer's own bell.
type descriptor struct {
	Title        string
	Template     string
	Type         enums.NotificationType
	NotifyAdmins bool
}

// eventTable maps wire event types to their rendering. Lowercase and legacy
// spellings stay dispatchable because deployed dashboard clients still send
// and expect them.
var eventTable = map[string]descriptor{
	string(enums.EventNewOfferRequest):   {Title: "New Offer Request", Template: "A buyer requested a quote.", Type: enums.NotificationTypeOfferUpdate, NotifyAdmins: true},
	string(enums.EventQuoteSubmitted):    {Title: "Price Quoted", Template: "A quote was submitted on your request.", Type: enums.NotificationTypeOfferUpdate},
	string(enums.EventOfferApproved):     {Title: "Offer Approved", Template: "An offer was approved.", Type: enums.NotificationTypeOfferUpdate, NotifyAdmins: true},
	string(enums.EventOfferRejected):     {Title: "Offer Rejected", Template: "An offer was rejected.", Type: enums.NotificationTypeOfferUpdate},
	string(enums.EventRevisionRequested): {Title: "Revision Requested", Template: "A buyer asked for a revised quote.", Type: enums.NotificationTypeOfferUpdate, NotifyAdmins: true},
	string(enums.EventOfferCancelled):    {Title: "Offer Cancelled", Template: "An offer request was cancelled.", Type: enums.NotificationTypeOfferUpdate, NotifyAdmins: true},

	string(enums.EventOfferStatusChanged):    {Title: "Offer Status Updated", Template: "An offer moved to a new status.", Type: enums.NotificationTypeOfferUpdate},
	string(enums.EventAssetStatusChanged):    {Title: "Asset Status Updated", Template: "One of your assets changed status.", Type: enums.NotificationTypeSystemAnnouncement},
	string(enums.EventCampaignStatusChanged): {Title: "Campaign Status Updated", Template: "One of your campaigns changed status.", Type: enums.NotificationTypeCampaignUpdate},
	string(enums.EventMonitoringSubmitted):   {Title: "Monitoring Report", Template: "A new inspection report was filed.", Type: enums.NotificationTypeMonitoringAlert},

	// legacy lowercase aliases
	"new_offer_request":  {Title: "New Offer Request", Template: "A buyer requested a quote.", Type: enums.NotificationTypeOfferUpdate, NotifyAdmins: true},
	"quote_submitted":    {Title: "Price Quoted", Template: "A quote was submitted on your request.", Type: enums.NotificationTypeOfferUpdate},
	"offer_approved":     {Title: "Offer Approved", Template: "An offer was approved.", Type: enums.NotificationTypeOfferUpdate, NotifyAdmins: true},
	"offer_rejected":     {Title: "Offer Rejected", Template: "An offer was rejected.", Type: enums.NotificationTypeOfferUpdate},
	"revision_requested": {Title: "Revision Requested", Template: "A buyer asked for a revised quote.", Type: enums.NotificationTypeOfferUpdate, NotifyAdmins: true},
	"offer_cancelled":    {Title: "Offer Cancelled", Template: "An offer request was cancelled.", Type: enums.NotificationTypeOfferUpdate, NotifyAdmins: true},
}

// fallbackDescriptor renders unknown event types; new backend events must not
// strand older dashboards.
var fallbackDescriptor = descriptor{Title: "New Update", Template: "Something changed on one of your offers.", Type: enums.NotificationTypeSystemAnnouncement}

// Dispatcher turns inbound domain events into bell rows, websocket toasts,
// and a cache-dirty signal.
type Dispatcher struct {
	bells   bellWriter
	hub     broadcaster
	refresh dirtyMarker
	logg    *logger.Logger
}

// NewDispatcher wires the three event sinks.
func NewDispatcher(bells bellWriter, hub broadcaster, refresh dirtyMarker, logg *logger.Logger) (*Dispatcher, error) {
	if bells == nil {
		return nil, fmt.Errorf("notifications writer required")
	}
	if hub == nil {
		return nil, fmt.Errorf("broadcast hub required")
	}
	if refresh == nil {
		return nil, fmt.Errorf("refresh scheduler required")
	}
	return &Dispatcher{bells: bells, hub: hub, refresh: refresh, logg: logg}, nil
}

// Dispatch handles one decoded event. Control frames (connection_status,
// pong) never produce bell rows; everything else persists exactly one row
// and broadcasts exactly one toast.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType string, envelope outbox.PayloadEnvelope) error {
	trimmed := strings.TrimSpace(eventType)
	switch strings.ToLower(trimmed) {
	case "connection_status", "pong":
		return nil
	}

	desc, ok := eventTable[trimmed]
	if !ok {
		desc = fallbackDescriptor
		if d.logg != nil {
			d.logg.Warn(d.logg.WithField(ctx, "event_type", trimmed), "unknown event type, dispatching generic update")
		}
	}

	target, offerID := targetFromEnvelope(envelope)

	frame := Frame{
		Type:    trimmed,
		Title:   desc.Title,
		Message: desc.Template,
		OfferID: offerID,
		SentAt:  time.Now().UTC(),
	}

	if target != uuid.Nil {
		notification := &models.Notification{
			UserID:  target,
			Type:    desc.Type,
			Title:   desc.Title,
			Message: desc.Template,
			Link:    offerLink(offerID),
		}
		if err := d.bells.Create(ctx, notification); err != nil {
			return fmt.Errorf("persist notification: %w", err)
		}
		d.hub.BroadcastTo(target, frame)

		// Buyer activity also lands on the mediation dashboard.
		if desc.NotifyAdmins {
			adminRow := &models.Notification{
				Type:    desc.Type,
				Title:   desc.Title,
				Message: desc.Template,
				Link:    offerLink(offerID),
			}
			if err := d.bells.CreateForRole(ctx, enums.UserRoleAdmin, adminRow); err != nil {
				return fmt.Errorf("persist admin notifications: %w", err)
			}
			d.hub.BroadcastToRole(enums.UserRoleAdmin, frame)
		}
	} else {
		// Without a resolvable recipient the toast still goes out broadly.
		d.hub.Broadcast(frame)
	}

	d.refresh.MarkDirty()
	return nil
}

func offerLink(offerID string) *string {
	if offerID == "" {
		return nil
	}
	link := "/offers/requests/" + offerID
	return &link
}

// targetFromEnvelope pulls the recipient and offer id out of the payload
// when present. Buyer events carry buyer_id, asset events carry seller_id.
// Unknown payload shapes degrade to a broadcast.
func targetFromEnvelope(envelope outbox.PayloadEnvelope) (uuid.UUID, string) {
	if len(envelope.Data) == 0 {
		return uuid.Nil, ""
	}
	var common struct {
		BuyerID  uuid.UUID `json:"buyer_id"`
		SellerID uuid.UUID `json:"seller_id"`
		OfferID  uuid.UUID `json:"offer_id"`
	}
	if err := json.Unmarshal(envelope.Data, &common); err != nil {
		return uuid.Nil, ""
	}
	offerID := ""
	if common.OfferID != uuid.Nil {
		offerID = common.OfferID.String()
	}
	target := common.BuyerID
	if target == uuid.Nil {
		target = common.SellerID
	}
	return target, offerID
}
