package campaigns

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
	"github.com/beatspace-ads/beatspace-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Actor identifies who is driving a campaign mutation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// CreateCampaignInput is the buyer-side payload for a new campaign.
type CreateCampaignInput struct {
	Name      string           `json:"name" validate:"required"`
	Brand     *string          `json:"brand,omitempty"`
	Budget    *float64         `json:"budget,omitempty" validate:"omitempty,gte=0"`
	AssetIDs  types.StringList `json:"asset_ids,omitempty"`
	StartDate *time.Time       `json:"start_date,omitempty"`
	EndDate   *time.Time       `json:"end_date,omitempty"`
	Notes     *string          `json:"notes,omitempty"`
}

// UpdateCampaignInput carries optional mutations; nil means keep the stored
// value.
type UpdateCampaignInput struct {
	Name      *string           `json:"name,omitempty"`
	Brand     *string           `json:"brand,omitempty"`
	Budget    *float64          `json:"budget,omitempty" validate:"omitempty,gte=0"`
	AssetIDs  *types.StringList `json:"asset_ids,omitempty"`
	StartDate *time.Time        `json:"start_date,omitempty"`
	EndDate   *time.Time        `json:"end_date,omitempty"`
	Notes     *string           `json:"notes,omitempty"`
}

// SetStatusInput is the admin lifecycle-transition payload.
type SetStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// Service exposes campaign CRUD and the admin status patch.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateCampaignInput) (*models.Campaign, error)
	Update(ctx context.Context, actor Actor, campaignID uuid.UUID, input UpdateCampaignInput) (*models.Campaign, error)
	Delete(ctx context.Context, actor Actor, campaignID uuid.UUID) error
	Get(ctx context.Context, actor Actor, campaignID uuid.UUID) (*models.Campaign, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Campaign, error)
	ListAll(ctx context.Context) ([]models.Campaign, error)
	SetStatus(ctx context.Context, actor Actor, campaignID uuid.UUID, input SetStatusInput) (*models.Campaign, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	users  userFinder
}

// NewService wires the campaign service.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, users userFinder) (Service, error) {
	if repo == nil {
		return nil, errors.New("campaigns repository required")
	}
	if tx == nil {
		return nil, errors.New("transaction runner required")
	}
	if ob == nil {
		return nil, errors.New("outbox publisher required")
	}
	if users == nil {
		return nil, errors.New("user finder required")
	}
	return &service{repo: repo, tx: tx, outbox: ob, users: users}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateCampaignInput) (*models.Campaign, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer identity missing")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Budget != nil && *input.Budget < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "budget cannot be negative")
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end_date precedes start_date")
	}

	buyer, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup buyer")
	}

	campaign := &models.Campaign{
		BuyerID:   buyer.ID,
		BuyerName: buyer.CompanyName,
		Name:      strings.TrimSpace(input.Name),
		Brand:     input.Brand,
		Budget:    input.Budget,
		Status:    enums.CampaignStatusDraft,
		AssetIDs:  input.AssetIDs,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Notes:     input.Notes,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.WithTx(tx).Create(ctx, campaign)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create campaign")
		}
		campaign = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return campaign, nil
}

func (s *service) Update(ctx context.Context, actor Actor, campaignID uuid.UUID, input UpdateCampaignInput) (*models.Campaign, error) {
	if input.Budget != nil && *input.Budget < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "budget cannot be negative")
	}

	var result *models.Campaign
	err := s.withCampaign(ctx, campaignID, func(tx *gorm.DB, repo Repository, campaign *models.Campaign) error {
		if actor.Role != enums.UserRoleAdmin && campaign.BuyerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "campaign belongs to another buyer")
		}

		if input.Name != nil {
			trimmed := strings.TrimSpace(*input.Name)
			if trimmed == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
			}
			campaign.Name = trimmed
		}
		if input.Brand != nil {
			campaign.Brand = input.Brand
		}
		if input.Budget != nil {
			campaign.Budget = input.Budget
		}
		if input.AssetIDs != nil {
			campaign.AssetIDs = *input.AssetIDs
		}
		if input.StartDate != nil {
			campaign.StartDate = input.StartDate
		}
		if input.EndDate != nil {
			campaign.EndDate = input.EndDate
		}
		if input.Notes != nil {
			campaign.Notes = input.Notes
		}
		if campaign.StartDate != nil && campaign.EndDate != nil && campaign.EndDate.Before(*campaign.StartDate) {
			return pkgerrors.New(pkgerrors.CodeValidation, "end_date precedes start_date")
		}

		if err := repo.Update(ctx, campaign); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update campaign")
		}
		result = campaign
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, actor Actor, campaignID uuid.UUID) error {
	return s.withCampaign(ctx, campaignID, func(tx *gorm.DB, repo Repository, campaign *models.Campaign) error {
		if actor.Role != enums.UserRoleAdmin && campaign.BuyerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "campaign belongs to another buyer")
		}
		if err := repo.Delete(ctx, campaign.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete campaign")
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, actor Actor, campaignID uuid.UUID) (*models.Campaign, error) {
	if campaignID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign id is required")
	}
	campaign, err := s.repo.FindByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup campaign")
	}
	if actor.Role != enums.UserRoleAdmin && campaign.BuyerID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "campaign belongs to another buyer")
	}
	return campaign, nil
}

func (s *service) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Campaign, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer identity missing")
	}
	rows, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer campaigns")
	}
	return rows, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.Campaign, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list campaigns")
	}
	return rows, nil
}

func (s *service) SetStatus(ctx context.Context, actor Actor, campaignID uuid.UUID, input SetStatusInput) (*models.Campaign, error) {
	target, err := enums.ParseCampaignStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	if actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins change campaign status")
	}

	var result *models.Campaign
	err = s.withCampaign(ctx, campaignID, func(tx *gorm.DB, repo Repository, campaign *models.Campaign) error {
		if campaign.Status == target {
			result = campaign
			return nil
		}

		campaign.Status = target
		if err := repo.Update(ctx, campaign); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update campaign status")
		}
		result = campaign

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCampaignStatusChanged,
			AggregateType: enums.AggregateCampaign,
			AggregateID:   campaign.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
			Data: payloads.CampaignStatusChangedEvent{
				CampaignID: campaign.ID,
				BuyerID:    campaign.BuyerID,
				Status:     target,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) withCampaign(ctx context.Context, campaignID uuid.UUID, fn func(tx *gorm.DB, repo Repository, campaign *models.Campaign) error) error {
	if campaignID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "campaign id is required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		campaign, err := repo.FindByID(ctx, campaignID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup campaign")
		}
		return fn(tx, repo, campaign)
	})
}
