package pricing

import (
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
)

// ApplyMargin reprices every item to hit one target margin, overriding any
// per-item rate set earlier. The cost basis is the snapshot-derived loaded
// labor cost for labor items and the stored cost for everything else, so the
// operation is idempotent: a second pass with the same target is a no-op.
//
// MarginPercent keeps the caller's requested figure even when the math runs
// on the clamped value, so the display round-trips user intent.
func ApplyMargin(items []Item, targetMarginPercent float64, snap Snapshot) []Item {
	m := clampMargin(targetMarginPercent) / 100
	out := make([]Item, len(items))
	for i, item := range items {
		next := item
		cost := item.Cost
		if item.Type == enums.ItemTypeLabor {
			cost = snap.LoadedLaborCost()
			next.Cost = cost
		}
		next.Rate = safeDiv(cost, 1-m)
		next.Total = next.Quantity * next.Rate
		next.MarginPercent = targetMarginPercent
		if next.Type != enums.ItemTypeLabor {
			next.MarkupPercent = safeDiv(next.Rate-next.Cost, next.Cost) * 100
		}
		out[i] = next
	}
	return out
}
