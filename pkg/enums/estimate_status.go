package enums

import "fmt"

// EstimateStatus tracks where an estimate sits in its editing lifecycle.
type EstimateStatus string

const (
	EstimateStatusDraft    EstimateStatus = "draft"
	EstimateStatusSent     EstimateStatus = "sent"
	EstimateStatusApproved EstimateStatus = "approved"
	EstimateStatusDeclined EstimateStatus = "declined"
)

var validEstimateStatuses = []EstimateStatus{
	EstimateStatusDraft,
	EstimateStatusSent,
	EstimateStatusApproved,
	EstimateStatusDeclined,
}

// IsValid reports whether the value matches the canonical estimate status enum.
func (s EstimateStatus) IsValid() bool {
	for _, candidate := range validEstimateStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseEstimateStatus converts the raw string to EstimateStatus.
func ParseEstimateStatus(value string) (EstimateStatus, error) {
	for _, candidate := range validEstimateStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid estimate status %q", value)
}
