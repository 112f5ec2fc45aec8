package enums

import "fmt"

// PayType describes how an employee on the roster is compensated.
type PayType string

const (
	PayTypeHourly PayType = "hourly"
	PayTypeSalary PayType = "salary"
)

var validPayTypes = []PayType{
	PayTypeHourly,
	PayTypeSalary,
}

// IsValid reports whether the value matches the canonical pay type enum.
func (p PayType) IsValid() bool {
	for _, candidate := range validPayTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePayType converts the raw string to PayType.
func ParsePayType(value string) (PayType, error) {
	for _, candidate := range validPayTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pay type %q", value)
}
