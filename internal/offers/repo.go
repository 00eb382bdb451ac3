package offers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
)

// Repository is the persistence surface the offer workflow needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, offer *models.OfferRequest) (*models.OfferRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.OfferRequest, error)
	ListAll(ctx context.Context) ([]models.OfferRequest, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.OfferRequest, error)
	Update(ctx context.Context, offer *models.OfferRequest) error
	UpdateQuote(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, status enums.OfferStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an offers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, offer *models.OfferRequest) (*models.OfferRequest, error) {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.OfferRequest, error) {
	var offer models.OfferRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.OfferRequest, error) {
	var rows []models.OfferRequest
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.OfferRequest, error) {
	var rows []models.OfferRequest
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, offer *models.OfferRequest) error {
	return r.db.WithContext(ctx).Save(offer).Error
}

// UpdateQuote applies quote fields in one statement so the counter increment
// stays atomic under concurrent admin submissions.
func (r *repository) UpdateQuote(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.OfferRequest{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.OfferRequest{}, "id = ?", id).Error
}

func (r *repository) CountByStatus(ctx context.Context, status enums.OfferStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OfferRequest{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
