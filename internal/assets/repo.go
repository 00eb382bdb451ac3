package assets

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
)

// Repository is the persistence surface for assets and their inspection
// reports.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, asset *models.Asset) (*models.Asset, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	ListAll(ctx context.Context, params ListParams) ([]models.Asset, error)
	ListPublic(ctx context.Context, params ListParams) ([]models.Asset, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Asset, error)
	Update(ctx context.Context, asset *models.Asset) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, status enums.AssetStatus) (int64, error)

	CreateMonitoringReport(ctx context.Context, report *models.MonitoringReport) (*models.MonitoringReport, error)
	ListMonitoringReports(ctx context.Context, assetID uuid.UUID) ([]models.MonitoringReport, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an assets repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	if err := r.db.WithContext(ctx).Create(asset).Error; err != nil {
		return nil, err
	}
	return asset, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *repository) ListAll(ctx context.Context, params ListParams) ([]models.Asset, error) {
	var rows []models.Asset
	err := r.scoped(ctx, params).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPublic restricts the marketplace listing to publicly visible statuses.
func (r *repository) ListPublic(ctx context.Context, params ListParams) ([]models.Asset, error) {
	var rows []models.Asset
	err := r.scoped(ctx, params).
		Where("status IN ?", []enums.AssetStatus{
			enums.AssetStatusAvailable,
			enums.AssetStatusLive,
			enums.AssetStatusBooked,
		}).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Asset, error) {
	var rows []models.Asset
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, asset *models.Asset) error {
	return r.db.WithContext(ctx).Save(asset).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Asset{}).Error
}

func (r *repository) CountByStatus(ctx context.Context, status enums.AssetStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *repository) CreateMonitoringReport(ctx context.Context, report *models.MonitoringReport) (*models.MonitoringReport, error) {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

func (r *repository) ListMonitoringReports(ctx context.Context, assetID uuid.UUID) ([]models.MonitoringReport, error) {
	var rows []models.MonitoringReport
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("inspected_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) scoped(ctx context.Context, params ListParams) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Asset{})
	if search := strings.TrimSpace(params.Search); search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ?", needle, needle)
	}
	if district := strings.TrimSpace(params.District); district != "" {
		query = query.Where("district = ?", district)
	}
	if assetType := strings.TrimSpace(params.Type); assetType != "" {
		query = query.Where("type = ?", assetType)
	}
	return query
}
