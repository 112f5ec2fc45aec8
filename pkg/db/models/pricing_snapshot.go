package models

import (
	"time"

	"github.com/google/uuid"
)

// PricingSnapshot freezes the company cost rates for one estimate at the
// moment the estimate was first opened for editing. One row per estimate,
// written once, never updated.
type PricingSnapshot struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EstimateID uuid.UUID `gorm:"column:estimate_id;type:uuid;not null;uniqueIndex"`

	BaseLaborCost         float64 `gorm:"column:base_labor_cost;not null;default:0"`
	LaborBurdenPercent    float64 `gorm:"column:labor_burden_percent;not null;default:0"`
	OverheadPerManHour    float64 `gorm:"column:overhead_per_man_hour;not null;default:0"`
	BreakEvenRate         float64 `gorm:"column:break_even_rate;not null;default:0"`
	TargetHourlyRate      float64 `gorm:"column:target_hourly_rate;not null;default:0"`
	MaterialMarkupPercent float64 `gorm:"column:material_markup_percent;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
