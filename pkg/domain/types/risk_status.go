package types

import "fmt"

// RiskStatus represents the lifecycle state of a risk. Any status may follow
// any other; only membership in the domain is checked.
type RiskStatus string

const (
	RiskStatusDraft      RiskStatus = "Draft"
	RiskStatusDeprecated RiskStatus = "Deprecated"
	RiskStatusActive     RiskStatus = "Active"
)

// DefaultRiskStatus is applied to risks constructed without a status.
const DefaultRiskStatus = RiskStatusDraft

// AllRiskStatuses returns all valid risk statuses in display order
func AllRiskStatuses() []RiskStatus {
	return []RiskStatus{
		RiskStatusDraft,
		RiskStatusDeprecated,
		RiskStatusActive,
	}
}

// IsValid checks if the risk status is valid
func (s RiskStatus) IsValid() bool {
	switch s {
	case RiskStatusDraft,
		RiskStatusDeprecated,
		RiskStatusActive:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as DefaultRiskStatus.
func (s RiskStatus) Normalize() RiskStatus {
	if s == "" {
		return DefaultRiskStatus
	}
	return s
}

// String returns the string representation of the risk status
func (s RiskStatus) String() string {
	return string(s)
}

// ParseRiskStatus parses a string into a RiskStatus
func ParseRiskStatus(s string) (RiskStatus, error) {
	status := RiskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid risk status: %s", s)
	}
	return status, nil
}
