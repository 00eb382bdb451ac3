package offers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
	pkgerrors "github.com/beatspace-ads/beatspace-backend/pkg/errors"
	"github.com/beatspace-ads/beatspace-backend/pkg/outbox"
	"github.com/beatspace-ads/beatspace-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type assetFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type campaignFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
}

// Actor identifies who is driving a workflow mutation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Service is the quote/approve workflow controller plus the read-side views.
type Service interface {
	CreateRequest(ctx context.Context, actor Actor, input CreateRequestInput) (*models.OfferRequest, error)
	SubmitQuote(ctx context.Context, actor Actor, offerID uuid.UUID, input SubmitQuoteInput) (*models.OfferRequest, error)
	Approve(ctx context.Context, actor Actor, offerID uuid.UUID) (*models.OfferRequest, error)
	RequestRevision(ctx context.Context, actor Actor, offerID uuid.UUID, input RevisionInput) (*models.OfferRequest, error)
	Reject(ctx context.Context, actor Actor, offerID uuid.UUID, reason string) (*models.OfferRequest, error)
	SetStatus(ctx context.Context, actor Actor, offerID uuid.UUID, input SetStatusInput) (*models.OfferRequest, error)
	CancelRequest(ctx context.Context, actor Actor, offerID uuid.UUID) (*models.OfferRequest, error)
	Delete(ctx context.Context, actor Actor, offerID uuid.UUID) error

	MediationView(ctx context.Context, params MediationParams) (*MediationResult, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]OfferView, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	enricher  *Enricher
	assets    assetFinder
	users     userFinder
	campaigns campaignFinder
}

// NewService wires the workflow controller.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, enricher *Enricher, assets assetFinder, users userFinder, campaigns campaignFinder) (Service, error) {
	if repo == nil {
		return nil, errors.New("offers repository required")
	}
	if tx == nil {
		return nil, errors.New("transaction runner required")
	}
	if ob == nil {
		return nil, errors.New("outbox publisher required")
	}
	if enricher == nil {
		return nil, errors.New("enricher required")
	}
	if assets == nil {
		return nil, errors.New("asset finder required")
	}
	if users == nil {
		return nil, errors.New("user finder required")
	}
	if campaigns == nil {
		return nil, errors.New("campaign finder required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    ob,
		enricher:  enricher,
		assets:    assets,
		users:     users,
		campaigns: campaigns,
	}, nil
}

// quotableStatuses are the states an admin may (re-)quote from.
var quotableStatuses = []enums.OfferStatus{
	enums.OfferStatusPending,
	enums.OfferStatusQuoted,
	enums.OfferStatusInProcess,
	enums.OfferStatusRevisionRequested,
}

// approvableStatuses are the states holding an outstanding quote.
var approvableStatuses = []enums.OfferStatus{
	enums.OfferStatusQuoted,
	enums.OfferStatusInProcess,
	enums.OfferStatusRevisionRequested,
}

func (s *service) CreateRequest(ctx context.Context, actor Actor, input CreateRequestInput) (*models.OfferRequest, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer identity missing")
	}
	if input.AssetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset_id is required")
	}
	if strings.TrimSpace(input.ContractDuration) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract_duration is required")
	}

	buyer, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup buyer")
	}

	asset, err := s.assets.FindByID(ctx, input.AssetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup asset")
	}
	if !asset.Status.IsPubliclyVisible() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "asset is not open for offers")
	}

	offer := &models.OfferRequest{
		AssetID:             asset.ID,
		AssetName:           asset.Name,
		BuyerID:             buyer.ID,
		BuyerName:           buyer.CompanyName,
		BuyerEmail:          buyer.Email,
		Status:              enums.OfferStatusPending,
		ContractDuration:    strings.TrimSpace(input.ContractDuration),
		AssetStartDate:      input.AssetStartDate,
		AssetExpirationDate: input.AssetExpirationDate,
		SpecialRequirements: input.SpecialRequirements,
		Notes:               input.Notes,
		ServiceBundles:      input.ServiceBundles,
		AdditionalServices:  input.AdditionalServices,
	}

	if input.CampaignID != nil && *input.CampaignID != uuid.Nil {
		campaign, err := s.campaigns.FindByID(ctx, *input.CampaignID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup campaign")
		}
		if campaign.BuyerID != buyer.ID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "campaign belongs to another buyer")
		}
		offer.CampaignID = &campaign.ID
		offer.CampaignName = &campaign.Name
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, offer)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create offer request")
		}
		offer = created

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventNewOfferRequest,
			AggregateType: enums.AggregateOfferRequest,
			AggregateID:   offer.ID,
			Actor:         actorRef(actor),
			Data: payloads.OfferRequestCreatedEvent{
				OfferID:    offer.ID,
				AssetID:    offer.AssetID,
				AssetName:  offer.AssetName,
				BuyerID:    offer.BuyerID,
				BuyerName:  offer.BuyerName,
				CampaignID: offer.CampaignID,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *service) SubmitQuote(ctx context.Context, actor Actor, offerID uuid.UUID, input SubmitQuoteInput) (*models.OfferRequest, error) {
	if input.QuotedPrice <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quoted_price must be positive")
	}

	var result *models.OfferRequest
	err := s.withOffer(ctx, offerID, func(tx *gorm.DB, repo Repository, offer *models.OfferRequest) error {
		if !statusIn(offer.Status, quotableStatuses) {
			return stateConflict(offer.Status, "quote")
		}

		fields := map[string]any{
			"admin_quoted_price": input.QuotedPrice,
			"quote_count":        gorm.Expr("quote_count + 1"),
			"quote_valid_until":  input.ValidUntil,
		}
		if input.AdminNotes != nil {
			fields["admin_notes"] = input.AdminNotes
		}
		// First quote moves the request forward; re-quotes keep the status.
		if offer.Status.Equals(enums.OfferStatusPending) {
			fields["status"] = enums.OfferStatusQuoted
		}
		if err := repo.UpdateQuote(ctx, offer.ID, fields); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply quote")
		}

		updated, err := repo.FindByID(ctx, offer.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload offer")
		}
		result = updated

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuoteSubmitted,
			AggregateType: enums.AggregateOfferRequest,
			AggregateID:   updated.ID,
			Actor:         actorRef(actor),
			Data: payloads.QuoteSubmittedEvent{
				OfferID:     updated.ID,
				BuyerID:     updated.BuyerID,
				QuotedPrice: input.QuotedPrice,
				QuoteCount:  updated.QuoteCount,
				ValidUntil:  input.ValidUntil,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Approve(ctx context.Context, actor Actor, offerID uuid.UUID) (*models.OfferRequest, error) {
	var result *models.OfferRequest
	err := s.withOffer(ctx, offerID, func(tx *gorm.DB, repo Repository, offer *models.OfferRequest) error {
		if actor.Role != enums.UserRoleAdmin && offer.BuyerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "offer belongs to another buyer")
		}
		if !statusIn(offer.Status, approvableStatuses) {
			return stateConflict(offer.Status, "approve")
		}

		offer.Status = enums.OfferStatusApproved
		if err := repo.Update(ctx, offer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve offer")
		}
		result = offer

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOfferApproved,
			AggregateType: enums.AggregateOfferRequest,
			AggregateID:   offer.ID,
			Actor:         actorRef(actor),
			Data: payloads.OfferDecisionEvent{
				OfferID:   offer.ID,
				BuyerID:   offer.BuyerID,
				Status:    enums.OfferStatusApproved,
				DecidedAt: time.Now().UTC(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) RequestRevision(ctx context.Context, actor Actor, offerID uuid.UUID, input RevisionInput) (*models.OfferRequest, error) {
	var result *models.OfferRequest
	err := s.withOffer(ctx, offerID, func(tx *gorm.DB, repo Repository, offer *models.OfferRequest) error {
		if actor.Role != enums.UserRoleAdmin && offer.BuyerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "offer belongs to another buyer")
		}
		if offer.Status.IsTerminal() {
			return stateConflict(offer.Status, "request revision")
		}

		flag := true
		offer.Status = enums.OfferStatusRevisionRequested
		offer.RevisionRequested = &flag
		if input.Notes != nil {
			offer.Notes = input.Notes
		}
		if err := repo.Update(ctx, offer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request revision")
		}
		result = offer

		notes := ""
		if input.Notes != nil {
			notes = *input.Notes
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRevisionRequested,
			AggregateType: enums.AggregateOfferRequest,
			AggregateID:   offer.ID,
			Actor:         actorRef(actor),
			Data: payloads.RevisionRequestedEvent{
				OfferID: offer.ID,
				BuyerID: offer.BuyerID,
				Notes:   notes,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Reject(ctx context.Context, actor Actor, offerID uuid.UUID, reason string) (*models.OfferRequest, error) {
	var result *models.OfferRequest
	err := s.withOffer(ctx, offerID, func(tx *gorm.DB, repo Repository, offer *models.OfferRequest) error {
		if offer.Status.IsTerminal() {
			return stateConflict(offer.Status, "reject")
		}

		offer.Status = enums.OfferStatusRejected
		if err := repo.Update(ctx, offer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject offer")
		}
		result = offer

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOfferRejected,
			AggregateType: enums.AggregateOfferRequest,
			AggregateID:   offer.ID,
			Actor:         actorRef(actor),
			Data: payloads.OfferDecisionEvent{
				OfferID:   offer.ID,
				BuyerID:   offer.BuyerID,
				Status:    enums.OfferStatusRejected,
				Reason:    strings.TrimSpace(reason),
				DecidedAt: time.Now().UTC(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) SetStatus(ctx context.Context, actor Actor, offerID uuid.UUID, input SetStatusInput) (*models.OfferRequest, error) {
	target, err := enums.ParseOfferStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}

	var result *models.OfferRequest
	err = s.withOffer(ctx, offerID, func(tx *gorm.DB, repo Repository, offer *models.OfferRequest) error {
		if offer.Status.IsTerminal() {
			return stateConflict(offer.Status, "set status")
		}

		from := offer.Status
		offer.Status = target
		if err := repo.Update(ctx, offer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set offer status")
		}
		result = offer

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOfferStatusChanged,
			AggregateType: enums.AggregateOfferRequest,
			AggregateID:   offer.ID,
			Actor:         actorRef(actor),
			Data: payloads.OfferStatusChangedEvent{
				OfferID:    offer.ID,
				BuyerID:    offer.BuyerID,
				FromStatus: from,
				ToStatus:   target,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) CancelRequest(ctx context.Context, actor Actor, offerID uuid.UUID) (*models.OfferRequest, error) {
	var result *models.OfferRequest
	err := s.withOffer(ctx, offerID, func(tx *gorm.DB, repo Repository, offer *models.OfferRequest) error {
		if actor.Role != enums.UserRoleAdmin && offer.BuyerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "offer belongs to another buyer")
		}
		if offer.Status.IsTerminal() {
			return stateConflict(offer.Status, "cancel")
		}

		flag := true
		offer.Status = enums.OfferStatusCancelled
		offer.CancelledByBuyer = &flag
		if err := repo.Update(ctx, offer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel offer")
		}
		result = offer

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOfferCancelled,
			AggregateType: enums.AggregateOfferRequest,
			AggregateID:   offer.ID,
			Actor:         actorRef(actor),
			Data: payloads.OfferCancelledEvent{
				OfferID:     offer.ID,
				BuyerID:     offer.BuyerID,
				CancelledAt: time.Now().UTC(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, actor Actor, offerID uuid.UUID) error {
	return s.withOffer(ctx, offerID, func(tx *gorm.DB, repo Repository, offer *models.OfferRequest) error {
		if actor.Role != enums.UserRoleAdmin && offer.BuyerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "offer belongs to another buyer")
		}
		if err := repo.Delete(ctx, offer.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete offer")
		}
		return nil
	})
}

func (s *service) MediationView(ctx context.Context, params MediationParams) (*MediationResult, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}
	views, err := s.enricher.Enrich(ctx, rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "enrich offers")
	}
	result := BuildMediationView(views, params)
	return &result, nil
}

func (s *service) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]OfferView, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer identity missing")
	}
	rows, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer offers")
	}
	views, err := s.enricher.Enrich(ctx, rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "enrich offers")
	}
	return views, nil
}

// withOffer loads the offer inside a transaction and hands it to fn together
// with a tx-bound repository, so the mutation and its outbox row commit as one.
func (s *service) withOffer(ctx context.Context, offerID uuid.UUID, fn func(tx *gorm.DB, repo Repository, offer *models.OfferRequest) error) error {
	if offerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer id is required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		offer, err := repo.FindByID(ctx, offerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup offer")
		}
		return fn(tx, repo, offer)
	})
}

func statusIn(status enums.OfferStatus, allowed []enums.OfferStatus) bool {
	for _, candidate := range allowed {
		if status.Equals(candidate) {
			return true
		}
	}
	return false
}

func stateConflict(current enums.OfferStatus, action string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "offer status does not allow "+action).
		WithDetails(map[string]any{"current_status": current})
}

func actorRef(actor Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)}
}
