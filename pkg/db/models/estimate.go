package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
)

// Estimate is the editable pricing document. Adjustment toggles live inline;
// items, zones and the frozen pricing snapshot hang off it.
type Estimate struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title      string               `gorm:"column:title;not null"`
	ClientName string               `gorm:"column:client_name"`
	Status     enums.EstimateStatus `gorm:"column:status;not null;default:'draft'"`

	TripCharge         bool    `gorm:"column:trip_charge;not null;default:false"`
	EmergencySurcharge bool    `gorm:"column:emergency_surcharge;not null;default:false"`
	ApplyTax           bool    `gorm:"column:apply_tax;not null;default:false"`
	TaxLabor           bool    `gorm:"column:tax_labor;not null;default:false"`
	TaxRatePercent     float64 `gorm:"column:tax_rate_percent;not null;default:0"`
	MinJobFeeApplied   bool    `gorm:"column:min_job_fee_applied;not null;default:false"`

	Items    []EstimateItem   `gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE"`
	Zones    []EstimateZone   `gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE"`
	Snapshot *PricingSnapshot `gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
