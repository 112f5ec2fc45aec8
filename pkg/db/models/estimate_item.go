package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
)

// EstimateItem is one line on an estimate. Total always equals quantity
// times rate; the engine rewrites the dependent columns on every edit. For
// labor lines the cost column is display data, not a pricing input.
type EstimateItem struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EstimateID  uuid.UUID      `gorm:"column:estimate_id;type:uuid;not null"`
	Type        enums.ItemType `gorm:"column:type;not null;default:'other'"`
	Description string         `gorm:"column:description;not null"`

	Quantity      float64 `gorm:"column:quantity;not null;default:0"`
	Cost          float64 `gorm:"column:cost;not null;default:0"`
	Rate          float64 `gorm:"column:rate;not null;default:0"`
	Total         float64 `gorm:"column:total;not null;default:0"`
	MarginPercent float64 `gorm:"column:margin_percent;not null;default:0"`
	MarkupPercent float64 `gorm:"column:markup_percent;not null;default:0"`

	CalcBasis    string     `gorm:"column:calc_basis"`
	ZoneID       *uuid.UUID `gorm:"column:zone_id;type:uuid"`
	IsOverridden bool       `gorm:"column:is_overridden;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
