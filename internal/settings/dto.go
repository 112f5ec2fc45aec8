package settings

import (
	"time"

	"github.com/google/uuid"

	"github.com/DaKloudStudios/cruzremodel-backend/pkg/db/models"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/pricing"
)

// SettingsDTO exposes the company configuration in API responses.
type SettingsDTO struct {
	ID uuid.UUID `json:"id"`

	WeeksPerYear float64 `json:"weeks_per_year"`
	DaysPerWeek  float64 `json:"days_per_week"`
	HoursPerDay  float64 `json:"hours_per_day"`

	TargetMarginPercent   float64 `json:"target_margin_percent"`
	MaterialMarkupPercent float64 `json:"material_markup_percent"`
	TaxLaborByDefault     bool    `json:"tax_labor_by_default"`

	MinServiceCallFee         float64 `json:"min_service_call_fee"`
	TripCharge                float64 `json:"trip_charge"`
	EmergencySurchargePercent float64 `json:"emergency_surcharge_percent"`

	Employees     []EmployeeDTO     `json:"employees"`
	OverheadItems []OverheadItemDTO `json:"overhead_items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmployeeDTO is one roster entry.
type EmployeeDTO struct {
	ID                 uuid.UUID     `json:"id"`
	Name               string        `json:"name"`
	PayType            enums.PayType `json:"pay_type"`
	Wage               float64       `json:"wage"`
	BurdenPercent      float64       `json:"burden_percent"`
	UtilizationPercent float64       `json:"utilization_percent"`
}

// OverheadItemDTO is one recurring overhead expense.
type OverheadItemDTO struct {
	ID        uuid.UUID               `json:"id"`
	Label     string                  `json:"label"`
	Amount    float64                 `json:"amount"`
	Frequency enums.OverheadFrequency `json:"frequency"`
}

// MetricsDTO exposes the derived business metrics.
type MetricsDTO struct {
	ProductionDays        float64 `json:"production_days"`
	SeasonHours           float64 `json:"season_hours"`
	TotalBillableHours    float64 `json:"total_billable_hours"`
	TotalGrossPayroll     float64 `json:"total_gross_payroll"`
	TotalBurdenCost       float64 `json:"total_burden_cost"`
	TotalOverhead         float64 `json:"total_overhead"`
	OverheadPerManHour    float64 `json:"overhead_per_man_hour"`
	TotalAnnualCost       float64 `json:"total_annual_cost"`
	BreakEvenRate         float64 `json:"break_even_rate"`
	TargetHourlyRate      float64 `json:"target_hourly_rate"`
	AvgHourlyWage         float64 `json:"avg_hourly_wage"`
	AvgLaborBurdenPercent float64 `json:"avg_labor_burden_percent"`
}

// EmployeeInput is one roster entry in an update request. The roster is
// replaced wholesale on every update.
type EmployeeInput struct {
	Name               string        `json:"name"`
	PayType            enums.PayType `json:"pay_type"`
	Wage               float64       `json:"wage"`
	BurdenPercent      float64       `json:"burden_percent"`
	UtilizationPercent float64       `json:"utilization_percent"`
}

// OverheadItemInput is one overhead line in an update request.
type OverheadItemInput struct {
	Label     string                  `json:"label"`
	Amount    float64                 `json:"amount"`
	Frequency enums.OverheadFrequency `json:"frequency"`
}

// UpdateSettingsInput captures the fields an update may change. Nil pointers
// leave the stored value untouched; nil slices leave the roster and overhead
// list untouched.
type UpdateSettingsInput struct {
	WeeksPerYear *float64
	DaysPerWeek  *float64
	HoursPerDay  *float64

	TargetMarginPercent   *float64
	MaterialMarkupPercent *float64
	TaxLaborByDefault     *bool

	MinServiceCallFee         *float64
	TripCharge                *float64
	EmergencySurchargePercent *float64

	Employees     *[]EmployeeInput
	OverheadItems *[]OverheadItemInput
}

// FromModel maps a persisted settings row into a DTO.
func FromModel(m *models.BusinessSettings) *SettingsDTO {
	if m == nil {
		return nil
	}
	dto := &SettingsDTO{
		ID:                        m.ID,
		WeeksPerYear:              m.WeeksPerYear,
		DaysPerWeek:               m.DaysPerWeek,
		HoursPerDay:               m.HoursPerDay,
		TargetMarginPercent:       m.TargetMarginPercent,
		MaterialMarkupPercent:     m.MaterialMarkupPercent,
		TaxLaborByDefault:         m.TaxLaborByDefault,
		MinServiceCallFee:         m.MinServiceCallFee,
		TripCharge:                m.TripCharge,
		EmergencySurchargePercent: m.EmergencySurchargePercent,
		Employees:                 make([]EmployeeDTO, 0, len(m.Employees)),
		OverheadItems:             make([]OverheadItemDTO, 0, len(m.OverheadItems)),
		CreatedAt:                 m.CreatedAt,
		UpdatedAt:                 m.UpdatedAt,
	}
	for _, e := range m.Employees {
		dto.Employees = append(dto.Employees, EmployeeDTO{
			ID:                 e.ID,
			Name:               e.Name,
			PayType:            e.PayType,
			Wage:               e.Wage,
			BurdenPercent:      e.BurdenPercent,
			UtilizationPercent: e.UtilizationPercent,
		})
	}
	for _, o := range m.OverheadItems {
		dto.OverheadItems = append(dto.OverheadItems, OverheadItemDTO{
			ID:        o.ID,
			Label:     o.Label,
			Amount:    o.Amount,
			Frequency: o.Frequency,
		})
	}
	return dto
}

// MetricsFromPricing maps engine output into the response shape.
func MetricsFromPricing(m pricing.Metrics) *MetricsDTO {
	return &MetricsDTO{
		ProductionDays:        m.ProductionDays,
		SeasonHours:           m.SeasonHours,
		TotalBillableHours:    m.TotalBillableHours,
		TotalGrossPayroll:     m.TotalGrossPayroll,
		TotalBurdenCost:       m.TotalBurdenCost,
		TotalOverhead:         m.TotalOverhead,
		OverheadPerManHour:    m.OverheadPerManHour,
		TotalAnnualCost:       m.TotalAnnualCost,
		BreakEvenRate:         m.BreakEvenRate,
		TargetHourlyRate:      m.TargetHourlyRate,
		AvgHourlyWage:         m.AvgHourlyWage,
		AvgLaborBurdenPercent: m.AvgLaborBurdenPercent,
	}
}

// ToPricingSettings converts the persisted row into the engine input.
func ToPricingSettings(m *models.BusinessSettings) pricing.Settings {
	s := pricing.Settings{
		Season: pricing.SeasonCapacity{
			WeeksPerYear: m.WeeksPerYear,
			DaysPerWeek:  m.DaysPerWeek,
			HoursPerDay:  m.HoursPerDay,
		},
		TargetMarginPercent:   m.TargetMarginPercent,
		MaterialMarkupPercent: m.MaterialMarkupPercent,
		TaxLaborByDefault:     m.TaxLaborByDefault,
		Rules: pricing.BusinessRules{
			MinServiceCallFee:         m.MinServiceCallFee,
			TripCharge:                m.TripCharge,
			EmergencySurchargePercent: m.EmergencySurchargePercent,
		},
	}
	for _, e := range m.Employees {
		s.Employees = append(s.Employees, pricing.Employee{
			PayType:            e.PayType,
			Wage:               e.Wage,
			BurdenPercent:      e.BurdenPercent,
			UtilizationPercent: e.UtilizationPercent,
		})
	}
	for _, o := range m.OverheadItems {
		s.Overhead = append(s.Overhead, pricing.OverheadLine{
			Amount:    o.Amount,
			Frequency: o.Frequency,
		})
	}
	return s
}
