package controllers

import (
	"net/http"

	"github.com/DaKloudStudios/cruzremodel-backend/api/responses"
	"github.com/DaKloudStudios/cruzremodel-backend/api/validators"
	settingssvc "github.com/DaKloudStudios/cruzremodel-backend/internal/settings"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
	pkgerrors "github.com/DaKloudStudios/cruzremodel-backend/pkg/errors"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/logger"
)

// GetSettings returns the company configuration, bootstrapping it on first
// access.
func GetSettings(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		dto, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type employeeRequest struct {
	Name               string  `json:"name" validate:"required"`
	PayType            string  `json:"pay_type" validate:"required,oneof=hourly salary"`
	Wage               float64 `json:"wage" validate:"gte=0"`
	BurdenPercent      float64 `json:"burden_percent" validate:"gte=0"`
	UtilizationPercent float64 `json:"utilization_percent" validate:"gte=0,max=100"`
}

type overheadItemRequest struct {
	Label     string  `json:"label" validate:"required"`
	Amount    float64 `json:"amount" validate:"gte=0"`
	Frequency string  `json:"frequency" validate:"required,oneof=monthly annual"`
}

type updateSettingsRequest struct {
	WeeksPerYear *float64 `json:"weeks_per_year,omitempty" validate:"omitempty,gte=0"`
	DaysPerWeek  *float64 `json:"days_per_week,omitempty" validate:"omitempty,gte=0"`
	HoursPerDay  *float64 `json:"hours_per_day,omitempty" validate:"omitempty,gte=0"`

	TargetMarginPercent   *float64 `json:"target_margin_percent,omitempty" validate:"omitempty,gte=0,lt=100"`
	MaterialMarkupPercent *float64 `json:"material_markup_percent,omitempty" validate:"omitempty,gte=0"`
	TaxLaborByDefault     *bool    `json:"tax_labor_by_default,omitempty"`

	MinServiceCallFee         *float64 `json:"min_service_call_fee,omitempty" validate:"omitempty,gte=0"`
	TripCharge                *float64 `json:"trip_charge,omitempty" validate:"omitempty,gte=0"`
	EmergencySurchargePercent *float64 `json:"emergency_surcharge_percent,omitempty" validate:"omitempty,gte=0"`

	Employees     *[]employeeRequest     `json:"employees,omitempty" validate:"omitempty,dive"`
	OverheadItems *[]overheadItemRequest `json:"overhead_items,omitempty" validate:"omitempty,dive"`
}

func (req updateSettingsRequest) toInput() settingssvc.UpdateSettingsInput {
	input := settingssvc.UpdateSettingsInput{
		WeeksPerYear:              req.WeeksPerYear,
		DaysPerWeek:               req.DaysPerWeek,
		HoursPerDay:               req.HoursPerDay,
		TargetMarginPercent:       req.TargetMarginPercent,
		MaterialMarkupPercent:     req.MaterialMarkupPercent,
		TaxLaborByDefault:         req.TaxLaborByDefault,
		MinServiceCallFee:         req.MinServiceCallFee,
		TripCharge:                req.TripCharge,
		EmergencySurchargePercent: req.EmergencySurchargePercent,
	}
	if req.Employees != nil {
		employees := make([]settingssvc.EmployeeInput, 0, len(*req.Employees))
		for _, e := range *req.Employees {
			employees = append(employees, settingssvc.EmployeeInput{
				Name:               e.Name,
				PayType:            enums.PayType(e.PayType),
				Wage:               e.Wage,
				BurdenPercent:      e.BurdenPercent,
				UtilizationPercent: e.UtilizationPercent,
			})
		}
		input.Employees = &employees
	}
	if req.OverheadItems != nil {
		items := make([]settingssvc.OverheadItemInput, 0, len(*req.OverheadItems))
		for _, o := range *req.OverheadItems {
			items = append(items, settingssvc.OverheadItemInput{
				Label:     o.Label,
				Amount:    o.Amount,
				Frequency: enums.OverheadFrequency(o.Frequency),
			})
		}
		input.OverheadItems = &items
	}
	return input
}

// UpdateSettings mutates the company configuration. The roster and overhead
// lists are replaced wholesale when present in the body.
func UpdateSettings(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var payload updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// GetBusinessMetrics returns the derived company rates.
func GetBusinessMetrics(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		dto, err := svc.Metrics(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
