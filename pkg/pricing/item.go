package pricing

import (
	"github.com/google/uuid"

	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
)

// Item is one estimate line. The invariant Total == Quantity * Rate holds
// after every engine operation. For labor items the stored Cost is display
// data only; pricing always derives labor cost from the estimate snapshot.
type Item struct {
	ID            uuid.UUID
	Type          enums.ItemType
	Description   string
	Quantity      float64
	Cost          float64
	Rate          float64
	Total         float64
	MarginPercent float64
	MarkupPercent float64
	// CalcBasis names the generator that produced a machine-calculated
	// item. Empty for freehand items.
	CalcBasis    string
	ZoneID       *uuid.UUID
	IsOverridden bool
}

// ItemUpdate is a partial edit. Exactly one field is the expected case; when
// several are set, Reconcile applies them in its fixed precedence order.
type ItemUpdate struct {
	Quantity      *float64
	Cost          *float64
	Rate          *float64
	MarginPercent *float64
}

// Zone groups items by physical site area. Deleting a zone never deletes its
// items; they fall back to the unzoned bucket.
type Zone struct {
	ID    uuid.UUID
	Label string
}

// ClearZone detaches every item referencing the zone, leaving the items
// themselves untouched.
func ClearZone(items []Item, zoneID uuid.UUID) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		if item.ZoneID != nil && *item.ZoneID == zoneID {
			item.ZoneID = nil
		}
		out[i] = item
	}
	return out
}
