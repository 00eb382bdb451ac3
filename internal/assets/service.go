package assets

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
	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
	"github.com/beatspace-ads/beatspace-backend/pkg/maps"
	"github.com/beatspace-ads/beatspace-backend/pkg/outbox"
	"github.com/beatspace-ads/beatspace-backend/pkg/outbox/payloads"
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

type geocoder interface {
	Geocode(ctx context.Context, address string) (*maps.GeocodedAddress, error)
}

// Actor identifies who is driving an asset mutation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Service exposes the asset lifecycle plus monitoring reports.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateAssetInput) (*CreateAssetResult, error)
	Update(ctx context.Context, actor Actor, assetID uuid.UUID, input UpdateAssetInput) (*models.Asset, error)
	Delete(ctx context.Context, actor Actor, assetID uuid.UUID) error
	Get(ctx context.Context, assetID uuid.UUID) (*models.Asset, error)
	ListPublic(ctx context.Context, params ListParams) ([]models.Asset, error)
	ListAll(ctx context.Context, params ListParams) ([]models.Asset, error)
	SetStatus(ctx context.Context, actor Actor, assetID uuid.UUID, input SetStatusInput) (*models.Asset, error)

	SubmitMonitoring(ctx context.Context, actor Actor, assetID uuid.UUID, input MonitoringInput) (*models.MonitoringReport, error)
	ListMonitoring(ctx context.Context, assetID uuid.UUID) ([]models.MonitoringReport, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	users  userFinder
	geo    geocoder
	logg   *logger.Logger
}

// NewService wires the asset service. The geocoder may be nil; listings then
// skip location resolution and report it as a warning.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, users userFinder, geo geocoder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("assets repository required")
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
	return &service{repo: repo, tx: tx, outbox: ob, users: users, geo: geo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateAssetInput) (*CreateAssetResult, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller identity missing")
	}
	if actor.Role != enums.UserRoleSeller && actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only sellers can list assets")
	}
	if len(input.Pricing) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pricing requires at least one duration")
	}
	for duration, total := range input.Pricing {
		if total <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "pricing must be positive").
				WithDetails(map[string]any{"duration": duration})
		}
	}

	seller, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup seller")
	}

	asset := &models.Asset{
		SellerID:       seller.ID,
		SellerName:     seller.CompanyName,
		Name:           strings.TrimSpace(input.Name),
		Type:           strings.TrimSpace(input.Type),
		Address:        strings.TrimSpace(input.Address),
		Dimensions:     input.Dimensions,
		Description:    input.Description,
		Status:         enums.AssetStatusPendingApproval,
		Pricing:        input.Pricing,
		Photos:         input.Photos,
		Traffic:        input.Traffic,
		VisibilityNote: input.VisibilityNote,
	}

	warning := s.resolveLocation(ctx, asset)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, asset)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create asset")
		}
		asset = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CreateAssetResult{Asset: asset, GeocodeWarning: warning}, nil
}

// resolveLocation fills district, coordinates, and maps link from the address.
// Geocoding failures degrade to a warning; the listing itself always proceeds.
func (s *service) resolveLocation(ctx context.Context, asset *models.Asset) string {
	if s.geo == nil {
		return "location resolution unavailable"
	}
	resolved, err := s.geo.Geocode(ctx, asset.Address)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "address", asset.Address), "geocoding failed, storing asset without location")
		}
		return "address could not be resolved to a location"
	}

	asset.Latitude = &resolved.Location.Latitude
	asset.Longitude = &resolved.Location.Longitude
	if resolved.District != "" {
		asset.District = &resolved.District
	}
	link := resolved.MapsLink
	if link == "" {
		link = maps.FallbackMapsLink(resolved.Location)
	}
	asset.MapsLink = &link
	if resolved.FormattedAddress != "" {
		asset.Address = resolved.FormattedAddress
	}
	return ""
}

func (s *service) Update(ctx context.Context, actor Actor, assetID uuid.UUID, input UpdateAssetInput) (*models.Asset, error) {
	var result *models.Asset
	err := s.withAsset(ctx, assetID, func(tx *gorm.DB, repo Repository, asset *models.Asset) error {
		if actor.Role != enums.UserRoleAdmin && asset.SellerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "asset belongs to another seller")
		}

		addressChanged := applyUpdate(asset, input)
		if input.Pricing != nil {
			for duration, total := range *input.Pricing {
				if total <= 0 {
					return pkgerrors.New(pkgerrors.CodeValidation, "pricing must be positive").
						WithDetails(map[string]any{"duration": duration})
				}
			}
		}
		if addressChanged {
			// A changed address invalidates the stored location outright.
			asset.District = nil
			asset.Latitude = nil
			asset.Longitude = nil
			asset.MapsLink = nil
			s.resolveLocation(ctx, asset)
		}

		if err := repo.Update(ctx, asset); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update asset")
		}
		result = asset
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func applyUpdate(asset *models.Asset, input UpdateAssetInput) (addressChanged bool) {
	if input.Name != nil {
		asset.Name = strings.TrimSpace(*input.Name)
	}
	if input.Type != nil {
		asset.Type = strings.TrimSpace(*input.Type)
	}
	if input.Address != nil {
		trimmed := strings.TrimSpace(*input.Address)
		if trimmed != asset.Address {
			asset.Address = trimmed
			addressChanged = true
		}
	}
	if input.Dimensions != nil {
		asset.Dimensions = input.Dimensions
	}
	if input.Description != nil {
		asset.Description = input.Description
	}
	if input.Pricing != nil {
		asset.Pricing = *input.Pricing
	}
	if input.Photos != nil {
		asset.Photos = *input.Photos
	}
	if input.Traffic != nil {
		asset.Traffic = input.Traffic
	}
	if input.VisibilityNote != nil {
		asset.VisibilityNote = input.VisibilityNote
	}
	return addressChanged
}

func (s *service) Delete(ctx context.Context, actor Actor, assetID uuid.UUID) error {
	return s.withAsset(ctx, assetID, func(tx *gorm.DB, repo Repository, asset *models.Asset) error {
		if actor.Role != enums.UserRoleAdmin && asset.SellerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "asset belongs to another seller")
		}
		if err := repo.Delete(ctx, asset.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete asset")
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, assetID uuid.UUID) (*models.Asset, error) {
	if assetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id is required")
	}
	asset, err := s.repo.FindByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup asset")
	}
	return asset, nil
}

func (s *service) ListPublic(ctx context.Context, params ListParams) ([]models.Asset, error) {
	rows, err := s.repo.ListPublic(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list public assets")
	}
	return rows, nil
}

func (s *service) ListAll(ctx context.Context, params ListParams) ([]models.Asset, error) {
	rows, err := s.repo.ListAll(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assets")
	}
	return rows, nil
}

func (s *service) SetStatus(ctx context.Context, actor Actor, assetID uuid.UUID, input SetStatusInput) (*models.Asset, error) {
	target, err := enums.ParseAssetStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	if actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins change asset status")
	}

	var result *models.Asset
	err = s.withAsset(ctx, assetID, func(tx *gorm.DB, repo Repository, asset *models.Asset) error {
		if asset.Status == target {
			result = asset
			return nil
		}

		asset.Status = target
		if err := repo.Update(ctx, asset); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update asset status")
		}
		result = asset

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAssetStatusChanged,
			AggregateType: enums.AggregateAsset,
			AggregateID:   asset.ID,
			Actor:         actorRef(actor),
			Data: payloads.AssetStatusChangedEvent{
				AssetID:  asset.ID,
				SellerID: asset.SellerID,
				Status:   target,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) SubmitMonitoring(ctx context.Context, actor Actor, assetID uuid.UUID, input MonitoringInput) (*models.MonitoringReport, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reporter identity missing")
	}
	if input.Condition < 1 || input.Condition > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "condition must be between 1 and 5")
	}

	inspectedAt := time.Now().UTC()
	if input.InspectedAt != nil {
		inspectedAt = input.InspectedAt.UTC()
	}

	var result *models.MonitoringReport
	err := s.withAsset(ctx, assetID, func(tx *gorm.DB, repo Repository, asset *models.Asset) error {
		report := &models.MonitoringReport{
			AssetID:     asset.ID,
			ReporterID:  actor.UserID,
			Condition:   input.Condition,
			Notes:       input.Notes,
			Photos:      input.Photos,
			InspectedAt: inspectedAt,
		}
		created, err := repo.CreateMonitoringReport(ctx, report)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create monitoring report")
		}
		result = created

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMonitoringSubmitted,
			AggregateType: enums.AggregateAsset,
			AggregateID:   asset.ID,
			Actor:         actorRef(actor),
			Data: payloads.MonitoringSubmittedEvent{
				ReportID:    created.ID,
				AssetID:     asset.ID,
				Condition:   created.Condition,
				InspectedAt: created.InspectedAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListMonitoring(ctx context.Context, assetID uuid.UUID) ([]models.MonitoringReport, error) {
	if assetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id is required")
	}
	rows, err := s.repo.ListMonitoringReports(ctx, assetID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list monitoring reports")
	}
	return rows, nil
}

func (s *service) withAsset(ctx context.Context, assetID uuid.UUID, fn func(tx *gorm.DB, repo Repository, asset *models.Asset) error) error {
	if assetID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "asset id is required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		asset, err := repo.FindByID(ctx, assetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup asset")
		}
		return fn(tx, repo, asset)
	})
}

func actorRef(actor Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)}
}
