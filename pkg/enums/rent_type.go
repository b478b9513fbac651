package enums

import "fmt"

// RentType determines how billable units are derived from a date range.
type RentType string

const (
	RentTypeMonthly  RentType = "monthly"
	RentTypeSeasonal RentType = "seasonal"
	RentTypeDaily    RentType = "daily"
)

var validRentTypes = []RentType{
	RentTypeMonthly,
	RentTypeSeasonal,
	RentTypeDaily,
}

// String implements fmt.Stringer.
func (r RentType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RentType.
func (r RentType) IsValid() bool {
	for _, candidate := range validRentTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRentType converts raw input into a RentType.
func ParseRentType(value string) (RentType, error) {
	for _, candidate := range validRentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rent type %q", value)
}
