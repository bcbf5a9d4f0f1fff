package enums

import "fmt"

// SchemeStatus captures whether a scheme is currently switched on.
type SchemeStatus string

const (
	SchemeStatusActive   SchemeStatus = "active"
	SchemeStatusInactive SchemeStatus = "inactive"
)

var validSchemeStatuses = []SchemeStatus{
	SchemeStatusActive,
	SchemeStatusInactive,
}

// String implements fmt.Stringer.
func (s SchemeStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SchemeStatus.
func (s SchemeStatus) IsValid() bool {
	for _, candidate := range validSchemeStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSchemeStatus converts raw input into a SchemeStatus.
func ParseSchemeStatus(value string) (SchemeStatus, error) {
	for _, candidate := range validSchemeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid scheme status %q", value)
}

// ApprovalStatus tracks where a scheme sits in the approval workflow.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

var validApprovalStatuses = []ApprovalStatus{
	ApprovalStatusPending,
	ApprovalStatusApproved,
	ApprovalStatusRejected,
}

// String implements fmt.Stringer.
func (s ApprovalStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ApprovalStatus.
func (s ApprovalStatus) IsValid() bool {
	for _, candidate := range validApprovalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status can no longer transition.
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// ParseApprovalStatus converts raw input into an ApprovalStatus.
func ParseApprovalStatus(value string) (ApprovalStatus, error) {
	for _, candidate := range validApprovalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval status %q", value)
}

// ApprovalDecision represents the decision an approver can take on a
// pending scheme.
type ApprovalDecision string

const (
	// ApprovalDecisionApprove makes the scheme's offers resolvable.
	ApprovalDecisionApprove ApprovalDecision = "approve"
	// ApprovalDecisionReject permanently rejects the scheme.
	ApprovalDecisionReject ApprovalDecision = "reject"
)

var validApprovalDecisions = []ApprovalDecision{
	ApprovalDecisionApprove,
	ApprovalDecisionReject,
}

// String implements fmt.Stringer.
func (d ApprovalDecision) String() string {
	return string(d)
}

// IsValid reports whether the value is a known ApprovalDecision.
func (d ApprovalDecision) IsValid() bool {
	for _, candidate := range validApprovalDecisions {
		if candidate == d {
			return true
		}
	}
	return false
}

// Status returns the approval status the decision leads to.
func (d ApprovalDecision) Status() ApprovalStatus {
	if d == ApprovalDecisionApprove {
		return ApprovalStatusApproved
	}
	return ApprovalStatusRejected
}

// ParseApprovalDecision converts raw input into an ApprovalDecision.
func ParseApprovalDecision(value string) (ApprovalDecision, error) {
	for _, candidate := range validApprovalDecisions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval decision %q", value)
}
