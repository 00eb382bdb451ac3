package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
	"github.com/beatspace-ads/beatspace-backend/pkg/types"
)

// Campaign groups the assets a buyer is booking for one advertising push.
type Campaign struct {
	ID        uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID   uuid.UUID            `gorm:"column:buyer_id;type:uuid;not null;index"`
	BuyerName string               `gorm:"column:buyer_name;not null"`
	Name      string               `gorm:"column:name;not null"`
	Brand     *string              `gorm:"column:brand"`
	Budget    *float64             `gorm:"column:budget"`
	Status    enums.CampaignStatus `gorm:"column:status;type:campaign_status;not null;default:'Draft'"`
	AssetIDs  types.StringList     `gorm:"column:asset_ids;type:jsonb"`
	StartDate *time.Time           `gorm:"column:start_date"`
	EndDate   *time.Time           `gorm:"column:end_date"`
	Notes     *string              `gorm:"column:notes"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
