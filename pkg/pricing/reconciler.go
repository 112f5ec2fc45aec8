package pricing

import (
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
)

// Reconcile applies a partial edit to one item and recomputes the dependent
// fields so cost, rate, margin and markup stay mutually consistent.
//
// The update is merged into a working copy first, then the rules fire in a
// fixed order: quantity, cost, margin percent, rate. A later rule may
// overwrite fields written by an earlier one within the same call. The order
// is a pinned behavioral contract; changing it silently changes the result of
// multi-field edits.
func Reconcile(item Item, upd ItemUpdate, snap Snapshot) Item {
	out := item
	if upd.Quantity != nil {
		out.Quantity = *upd.Quantity
	}
	if upd.Cost != nil {
		out.Cost = *upd.Cost
	}
	if upd.MarginPercent != nil {
		out.MarginPercent = *upd.MarginPercent
	}
	if upd.Rate != nil {
		out.Rate = *upd.Rate
	}

	if upd.Quantity != nil {
		out.Total = out.Quantity * out.Rate
		if out.CalcBasis != "" {
			// a hand edit on a machine-calculated quantity detaches it
			// from its generator
			out.IsOverridden = true
		}
	}

	if upd.Cost != nil && out.Type != enums.ItemTypeLabor {
		m := clampMargin(out.MarginPercent) / 100
		out.Rate = safeDiv(out.Cost, 1-m)
		out.Total = out.Quantity * out.Rate
		out.MarkupPercent = safeDiv(out.Rate-out.Cost, out.Cost) * 100
	}

	if upd.MarginPercent != nil {
		m := clampMargin(out.MarginPercent) / 100
		if out.Type == enums.ItemTypeLabor {
			loaded := snap.LoadedLaborCost()
			out.Rate = safeDiv(loaded, 1-m)
			out.Total = out.Quantity * out.Rate
			// the stored cost mirrors the snapshot-derived figure,
			// replacing whatever the field held before
			out.Cost = loaded
		} else if out.Cost > 0 {
			out.Rate = safeDiv(out.Cost, 1-m)
			out.Total = out.Quantity * out.Rate
			out.MarkupPercent = safeDiv(out.Rate-out.Cost, out.Cost) * 100
		}
	}

	if upd.Rate != nil {
		out.Total = out.Quantity * out.Rate
		if out.Type == enums.ItemTypeLabor {
			loaded := snap.LoadedLaborCost()
			out.MarginPercent = safeDiv(out.Rate-loaded, out.Rate) * 100
		} else if out.Cost > 0 {
			out.MarkupPercent = safeDiv(out.Rate-out.Cost, out.Cost) * 100
			out.MarginPercent = safeDiv(out.Rate-out.Cost, out.Rate) * 100
		}
	}

	return out
}
