package pricing

import (
	"math"

	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
)

// Adjustments are the per-estimate toggles layered on top of the item totals.
type Adjustments struct {
	TripCharge         bool
	EmergencySurcharge bool
	ApplyTax           bool
	TaxLabor           bool
	TaxRatePercent     float64
	MinJobFeeApplied   bool
}

// Totals is the estimate-level rollup plus the reconstructed profit report.
type Totals struct {
	ItemsTotal     float64
	LaborTotal     float64
	NonLaborTotal  float64
	LaborSurcharge float64
	TripFee        float64
	SubTotal       float64
	MinJobGap      float64
	FinalMinFee    float64
	TaxAmount      float64
	GrandTotal     float64
	TotalCost      float64
	NetProfit      float64
	MarginPercent  float64
}

// Cost shares assumed for fee-type revenue when reconstructing true cost:
// roughly half of a trip fee covers vehicle cost, and roughly two thirds of
// an emergency surcharge covers overtime pay. Deliberate approximations.
const (
	tripFeeCostShare   = 0.5
	surchargeCostShare = 0.66
)

// ComputeTotals rolls the items up into a grand total and reconstructs the
// true cost basis for profit reporting. The cost reconstruction ignores each
// item's possibly rate-overridden stored figures: labor cost always comes
// from the snapshot, everything else from quantity times stored cost.
func ComputeTotals(items []Item, adj Adjustments, rules BusinessRules, snap Snapshot) Totals {
	var t Totals

	for _, item := range items {
		t.ItemsTotal += item.Total
		if item.Type == enums.ItemTypeLabor {
			t.LaborTotal += item.Total
		}
	}
	t.NonLaborTotal = t.ItemsTotal - t.LaborTotal

	if adj.EmergencySurcharge {
		t.LaborSurcharge = t.LaborTotal * rules.EmergencySurchargePercent / 100
	}
	if adj.TripCharge {
		t.TripFee = rules.TripCharge
	}
	t.SubTotal = t.ItemsTotal + t.TripFee + t.LaborSurcharge

	t.MinJobGap = math.Max(0, rules.MinServiceCallFee-t.SubTotal)
	if adj.MinJobFeeApplied {
		t.FinalMinFee = t.MinJobGap
	}

	taxable := t.NonLaborTotal
	if adj.TaxLabor {
		taxable = t.SubTotal + t.FinalMinFee
	}
	if adj.ApplyTax {
		t.TaxAmount = taxable * adj.TaxRatePercent / 100
	}
	t.GrandTotal = t.SubTotal + t.FinalMinFee + t.TaxAmount

	loaded := snap.LoadedLaborCost()
	for _, item := range items {
		if item.Type == enums.ItemTypeLabor {
			t.TotalCost += item.Quantity * loaded
		} else {
			t.TotalCost += item.Quantity * item.Cost
		}
	}
	if adj.TripCharge {
		t.TotalCost += tripFeeCostShare * t.TripFee
	}
	if adj.EmergencySurcharge {
		t.TotalCost += surchargeCostShare * t.LaborSurcharge
	}

	earned := t.SubTotal + t.FinalMinFee
	t.NetProfit = earned - t.TotalCost
	t.MarginPercent = safeDiv(t.NetProfit, earned) * 100

	return t
}
