package models

import (
	"time"

	"github.com/google/uuid"
)

// BusinessSettings is the single company-wide configuration row: season
// capacity, pricing rules, and service fee rules. Employees and overhead
// lines hang off it.
type BusinessSettings struct {
	ID uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`

	WeeksPerYear float64 `gorm:"column:weeks_per_year;not null;default:0"`
	DaysPerWeek  float64 `gorm:"column:days_per_week;not null;default:0"`
	HoursPerDay  float64 `gorm:"column:hours_per_day;not null;default:0"`

	TargetMarginPercent   float64 `gorm:"column:target_margin_percent;not null;default:0"`
	MaterialMarkupPercent float64 `gorm:"column:material_markup_percent;not null;default:0"`
	TaxLaborByDefault     bool    `gorm:"column:tax_labor_by_default;not null;default:false"`

	MinServiceCallFee         float64 `gorm:"column:min_service_call_fee;not null;default:0"`
	TripCharge                float64 `gorm:"column:trip_charge;not null;default:0"`
	EmergencySurchargePercent float64 `gorm:"column:emergency_surcharge_percent;not null;default:0"`

	Employees     []Employee     `gorm:"foreignKey:SettingsID;constraint:OnDelete:CASCADE"`
	OverheadItems []OverheadItem `gorm:"foreignKey:SettingsID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
