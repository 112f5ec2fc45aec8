package estimates

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DaKloudStudios/cruzremodel-backend/pkg/db/models"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/pricing"
)

// EstimateDTO is the full estimate document returned by the API.
type EstimateDTO struct {
	ID         uuid.UUID            `json:"id"`
	Title      string               `json:"title"`
	ClientName string               `json:"client_name,omitempty"`
	Status     enums.EstimateStatus `json:"status"`

	TripCharge         bool    `json:"trip_charge"`
	EmergencySurcharge bool    `json:"emergency_surcharge"`
	ApplyTax           bool    `json:"apply_tax"`
	TaxLabor           bool    `json:"tax_labor"`
	TaxRatePercent     float64 `json:"tax_rate_percent"`
	MinJobFeeApplied   bool    `json:"min_job_fee_applied"`

	Items    []ItemDTO    `json:"items"`
	Zones    []ZoneDTO    `json:"zones"`
	Snapshot *SnapshotDTO `json:"snapshot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EstimateSummaryDTO is the list-view shape: document metadata without the
// line items.
type EstimateSummaryDTO struct {
	ID         uuid.UUID            `json:"id"`
	Title      string               `json:"title"`
	ClientName string               `json:"client_name,omitempty"`
	Status     enums.EstimateStatus `json:"status"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// ItemDTO is one estimate line.
type ItemDTO struct {
	ID            uuid.UUID      `json:"id"`
	Type          enums.ItemType `json:"type"`
	Description   string         `json:"description"`
	Quantity      float64        `json:"quantity"`
	Cost          float64        `json:"cost"`
	Rate          float64        `json:"rate"`
	Total         float64        `json:"total"`
	MarginPercent float64        `json:"margin_percent"`
	MarkupPercent float64        `json:"markup_percent"`
	CalcBasis     string         `json:"calc_basis,omitempty"`
	ZoneID        *uuid.UUID     `json:"zone_id,omitempty"`
	IsOverridden  bool           `json:"is_overridden"`
}

// ZoneDTO is one site area grouping.
type ZoneDTO struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
}

// SnapshotDTO exposes the frozen pricing rates captured for the estimate.
type SnapshotDTO struct {
	BaseLaborCost         float64   `json:"base_labor_cost"`
	LaborBurdenPercent    float64   `json:"labor_burden_percent"`
	OverheadPerManHour    float64   `json:"overhead_per_man_hour"`
	BreakEvenRate         float64   `json:"break_even_rate"`
	TargetHourlyRate      float64   `json:"target_hourly_rate"`
	MaterialMarkupPercent float64   `json:"material_markup_percent"`
	CapturedAt            time.Time `json:"captured_at"`
}

// TotalsDTO is the estimate rollup with money figures rounded to cents.
// MarginPercent stays unrounded; it is a ratio, not a money amount.
type TotalsDTO struct {
	ItemsTotal     float64 `json:"items_total"`
	LaborTotal     float64 `json:"labor_total"`
	NonLaborTotal  float64 `json:"non_labor_total"`
	LaborSurcharge float64 `json:"labor_surcharge"`
	TripFee        float64 `json:"trip_fee"`
	SubTotal       float64 `json:"sub_total"`
	MinJobGap      float64 `json:"min_job_gap"`
	FinalMinFee    float64 `json:"final_min_fee"`
	TaxAmount      float64 `json:"tax_amount"`
	GrandTotal     float64 `json:"grand_total"`
	TotalCost      float64 `json:"total_cost"`
	NetProfit      float64 `json:"net_profit"`
	MarginPercent  float64 `json:"margin_percent"`
}

// CreateEstimateInput holds creation-time data for a new estimate.
type CreateEstimateInput struct {
	Title      string
	ClientName string
}

// UpdateEstimateInput captures the document metadata fields an update may
// change.
type UpdateEstimateInput struct {
	Title      *string
	ClientName *string
	Status     *enums.EstimateStatus
}

// AddItemInput describes a new line item. Unset pricing fields fall back to
// snapshot-derived defaults: labor rates at the target hourly rate, material
// and other lines at cost plus the frozen material markup.
type AddItemInput struct {
	Type        enums.ItemType
	Description string
	Quantity    *float64
	Cost        *float64
	Rate        *float64
	Margin      *float64
	CalcBasis   string
	ZoneID      *uuid.UUID
}

// UpdateItemInput is a partial line item edit.
type UpdateItemInput struct {
	Quantity *float64
	Cost     *float64
	Rate     *float64
	Margin   *float64
	ZoneID   **uuid.UUID
}

// AdjustmentsInput toggles the estimate-level fee and tax switches.
type AdjustmentsInput struct {
	TripCharge         *bool
	EmergencySurcharge *bool
	ApplyTax           *bool
	TaxLabor           *bool
	TaxRatePercent     *float64
	MinJobFeeApplied   *bool
}

// FromModel maps a persisted estimate into the response shape.
func FromModel(m *models.Estimate) *EstimateDTO {
	if m == nil {
		return nil
	}
	dto := &EstimateDTO{
		ID:                 m.ID,
		Title:              m.Title,
		ClientName:         m.ClientName,
		Status:             m.Status,
		TripCharge:         m.TripCharge,
		EmergencySurcharge: m.EmergencySurcharge,
		ApplyTax:           m.ApplyTax,
		TaxLabor:           m.TaxLabor,
		TaxRatePercent:     m.TaxRatePercent,
		MinJobFeeApplied:   m.MinJobFeeApplied,
		Items:              make([]ItemDTO, 0, len(m.Items)),
		Zones:              make([]ZoneDTO, 0, len(m.Zones)),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	for _, item := range m.Items {
		dto.Items = append(dto.Items, itemDTOFromModel(item))
	}
	for _, zone := range m.Zones {
		dto.Zones = append(dto.Zones, ZoneDTO{ID: zone.ID, Label: zone.Label})
	}
	if m.Snapshot != nil {
		dto.Snapshot = &SnapshotDTO{
			BaseLaborCost:         m.Snapshot.BaseLaborCost,
			LaborBurdenPercent:    m.Snapshot.LaborBurdenPercent,
			OverheadPerManHour:    m.Snapshot.OverheadPerManHour,
			BreakEvenRate:         m.Snapshot.BreakEvenRate,
			TargetHourlyRate:      m.Snapshot.TargetHourlyRate,
			MaterialMarkupPercent: m.Snapshot.MaterialMarkupPercent,
			CapturedAt:            m.Snapshot.CreatedAt,
		}
	}
	return dto
}

// SummaryFromModel maps an estimate row into the list-view shape.
func SummaryFromModel(m models.Estimate) EstimateSummaryDTO {
	return EstimateSummaryDTO{
		ID:         m.ID,
		Title:      m.Title,
		ClientName: m.ClientName,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func itemDTOFromModel(m models.EstimateItem) ItemDTO {
	return ItemDTO{
		ID:            m.ID,
		Type:          m.Type,
		Description:   m.Description,
		Quantity:      m.Quantity,
		Cost:          m.Cost,
		Rate:          m.Rate,
		Total:         m.Total,
		MarginPercent: m.MarginPercent,
		MarkupPercent: m.MarkupPercent,
		CalcBasis:     m.CalcBasis,
		ZoneID:        m.ZoneID,
		IsOverridden:  m.IsOverridden,
	}
}

func itemToEngine(m models.EstimateItem) pricing.Item {
	return pricing.Item{
		ID:            m.ID,
		Type:          m.Type,
		Description:   m.Description,
		Quantity:      m.Quantity,
		Cost:          m.Cost,
		Rate:          m.Rate,
		Total:         m.Total,
		MarginPercent: m.MarginPercent,
		MarkupPercent: m.MarkupPercent,
		CalcBasis:     m.CalcBasis,
		ZoneID:        m.ZoneID,
		IsOverridden:  m.IsOverridden,
	}
}

func applyEngineItem(out pricing.Item, m *models.EstimateItem) {
	m.Quantity = out.Quantity
	m.Cost = out.Cost
	m.Rate = out.Rate
	m.Total = out.Total
	m.MarginPercent = out.MarginPercent
	m.MarkupPercent = out.MarkupPercent
	m.ZoneID = out.ZoneID
	m.IsOverridden = out.IsOverridden
}

func snapshotToEngine(m *models.PricingSnapshot) pricing.Snapshot {
	if m == nil {
		return pricing.Snapshot{}
	}
	return pricing.Snapshot{
		BaseLaborCost:         m.BaseLaborCost,
		LaborBurdenPercent:    m.LaborBurdenPercent,
		OverheadPerManHour:    m.OverheadPerManHour,
		BreakEvenRate:         m.BreakEvenRate,
		TargetHourlyRate:      m.TargetHourlyRate,
		MaterialMarkupPercent: m.MaterialMarkupPercent,
	}
}

// roundCents rounds a money figure to two decimal places for presentation.
func roundCents(v float64) float64 {
	rounded, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return rounded
}

// TotalsFromPricing maps engine totals into the response shape, rounding
// every money figure to cents.
func TotalsFromPricing(t pricing.Totals) *TotalsDTO {
	return &TotalsDTO{
		ItemsTotal:     roundCents(t.ItemsTotal),
		LaborTotal:     roundCents(t.LaborTotal),
		NonLaborTotal:  roundCents(t.NonLaborTotal),
		LaborSurcharge: roundCents(t.LaborSurcharge),
		TripFee:        roundCents(t.TripFee),
		SubTotal:       roundCents(t.SubTotal),
		MinJobGap:      roundCents(t.MinJobGap),
		FinalMinFee:    roundCents(t.FinalMinFee),
		TaxAmount:      roundCents(t.TaxAmount),
		GrandTotal:     roundCents(t.GrandTotal),
		TotalCost:      roundCents(t.TotalCost),
		NetProfit:      roundCents(t.NetProfit),
		MarginPercent:  t.MarginPercent,
	}
}
