package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beatspace-ads/beatspace-backend/pkg/types"
)

// MonitoringReport records a post-booking condition inspection of an asset.
type MonitoringReport struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AssetID     uuid.UUID        `gorm:"column:asset_id;type:uuid;not null;index"`
	ReporterID  uuid.UUID        `gorm:"column:reporter_id;type:uuid;not null"`
	Condition   int              `gorm:"column:condition;not null"`
	Notes       *string          `gorm:"column:notes"`
	Photos      types.StringList `gorm:"column:photos;type:jsonb"`
	InspectedAt time.Time        `gorm:"column:inspected_at;not null"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
}
