package enums

import "fmt"

// ItemType classifies an estimate line item for pricing purposes.
type ItemType string

const (
	ItemTypeLabor    ItemType = "labor"
	ItemTypeMaterial ItemType = "material"
	ItemTypeOther    ItemType = "other"
)

var validItemTypes = []ItemType{
	ItemTypeLabor,
	ItemTypeMaterial,
	ItemTypeOther,
}

// IsValid reports whether the value matches the canonical item type enum.
func (t ItemType) IsValid() bool {
	for _, candidate := range validItemTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseItemType converts the raw string to ItemType.
func ParseItemType(value string) (ItemType, error) {
	for _, candidate := range validItemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item type %q", value)
}
