package enums

import "fmt"

// OverheadFrequency is the billing cadence of an overhead line.
type OverheadFrequency string

const (
	OverheadFrequencyMonthly OverheadFrequency = "monthly"
	OverheadFrequencyAnnual  OverheadFrequency = "annual"
)

var validOverheadFrequencies = []OverheadFrequency{
	OverheadFrequencyMonthly,
	OverheadFrequencyAnnual,
}

// IsValid reports whether the value matches the canonical overhead frequency enum.
func (f OverheadFrequency) IsValid() bool {
	for _, candidate := range validOverheadFrequencies {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseOverheadFrequency converts the raw string to OverheadFrequency.
func ParseOverheadFrequency(value string) (OverheadFrequency, error) {
	for _, candidate := range validOverheadFrequencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid overhead frequency %q", value)
}

// AnnualMultiplier returns the factor that converts the line amount to an
// annual figure.
func (f OverheadFrequency) AnnualMultiplier() float64 {
	if f == OverheadFrequencyMonthly {
		return 12
	}
	return 1
}
