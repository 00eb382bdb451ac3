package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
	"github.com/beatspace-ads/beatspace-backend/pkg/types"
)

// Asset represents an out-of-home advertising placement (billboard, bus
// stop shelter, transit wrap, ...). Pricing is duration-keyed, the way
// sellers quote contracts ("3_months" -> price for the whole window).
type Asset struct {
	ID             uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID       uuid.UUID         `gorm:"column:seller_id;type:uuid;not null;index"`
	SellerName     string            `gorm:"column:seller_name;not null"`
	Name           string            `gorm:"column:name;not null"`
	Type           string            `gorm:"column:type;not null"`
	Address        string            `gorm:"column:address;not null"`
	District       *string           `gorm:"column:district"`
	Latitude       *float64          `gorm:"column:latitude"`
	Longitude      *float64          `gorm:"column:longitude"`
	MapsLink       *string           `gorm:"column:maps_link"`
	Dimensions     *string           `gorm:"column:dimensions"`
	Description    *string           `gorm:"column:description"`
	Status         enums.AssetStatus `gorm:"column:status;type:asset_status;not null;default:'Pending Approval'"`
	Pricing        types.PricingMap  `gorm:"column:pricing;type:jsonb;not null"`
	Photos         types.StringList  `gorm:"column:photos;type:jsonb"`
	Traffic        *string           `gorm:"column:traffic"`
	VisibilityNote *string           `gorm:"column:visibility_note"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
