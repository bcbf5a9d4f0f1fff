package enums

import "fmt"

// VerificationStatus tracks reconciliation of a settled sale against the
// external billing system. Transitions are performed out-of-band; the
// settlement engine only ever writes the initial value.
type VerificationStatus string

const (
	// VerificationStatusSimulated marks dry-run settlements.
	VerificationStatusSimulated VerificationStatus = "simulated"
	// VerificationStatusPending marks real sales awaiting reconciliation.
	VerificationStatusPending VerificationStatus = "pending"
	// VerificationStatusVerified marks sales confirmed by billing.
	VerificationStatusVerified VerificationStatus = "verified"
)

var validVerificationStatuses = []VerificationStatus{
	VerificationStatusSimulated,
	VerificationStatusPending,
	VerificationStatusVerified,
}

// String implements fmt.Stringer.
func (s VerificationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known VerificationStatus.
func (s VerificationStatus) IsValid() bool {
	for _, candidate := range validVerificationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseVerificationStatus converts raw input into a VerificationStatus.
func ParseVerificationStatus(value string) (VerificationStatus, error) {
	for _, candidate := range validVerificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid verification status %q", value)
}
