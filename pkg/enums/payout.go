package enums

import "fmt"

// PayoutType defines how an offer's payout value is interpreted.
type PayoutType string

const (
	// PayoutTypeFixed is a flat per-unit amount.
	PayoutTypeFixed PayoutType = "fixed"
	// PayoutTypePercentage is a percentage of the gross dealer price.
	PayoutTypePercentage PayoutType = "percentage"
)

var validPayoutTypes = []PayoutType{
	PayoutTypeFixed,
	PayoutTypePercentage,
}

// String implements fmt.Stringer.
func (p PayoutType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PayoutType.
func (p PayoutType) IsValid() bool {
	for _, candidate := range validPayoutTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePayoutType converts raw input into a PayoutType. Scheme documents
// frequently spell the fixed variant as "Fixed Amount"; that alias is
// accepted here so extraction descriptors load without a mapping layer.
func ParsePayoutType(value string) (PayoutType, error) {
	switch value {
	case "fixed", "Fixed", "Fixed Amount":
		return PayoutTypeFixed, nil
	case "percentage", "Percentage":
		return PayoutTypePercentage, nil
	}
	return "", fmt.Errorf("invalid payout type %q", value)
}
